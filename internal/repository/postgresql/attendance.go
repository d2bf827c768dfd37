package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/attendance"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceReader {
	return &attendanceRepositoryImpl{db: db}
}

// FindByEmployeeBetween implements attendance.AttendanceReader.
func (r *attendanceRepositoryImpl) FindByEmployeeBetween(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, check_in_time, check_out_time, lunch_in_time, lunch_out_time, other_time, created_at
		FROM attendances
		WHERE employee_id = $1 AND check_in_time >= $2 AND check_in_time <= $3
		ORDER BY check_in_time
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var (
			rec       attendance.Record
			otherTime []byte
		)
		err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.CheckInTime, &rec.CheckOutTime,
			&rec.LunchInTime, &rec.LunchOutTime, &otherTime, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		if len(otherTime) > 0 {
			if err := json.Unmarshal(otherTime, &rec.OtherTime); err != nil {
				return nil, fmt.Errorf("failed to decode other_time for attendance %s: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance: %w", err)
	}

	return records, nil
}
