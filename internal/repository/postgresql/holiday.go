package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/holiday"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayReader {
	return &holidayRepositoryImpl{db: db}
}

// FindOverlapping implements holiday.HolidayReader.
func (r *holidayRepositoryImpl) FindOverlapping(ctx context.Context, start, end time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, start_date, end_date
		FROM holidays
		WHERE start_date <= $2::date AND end_date >= $1::date
		ORDER BY start_date
	`

	rows, err := q.Query(ctx, query, start.Format(time.DateOnly), end.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.StartDate, &h.EndDate); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holidays: %w", err)
	}

	return holidays, nil
}
