package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/leave"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/database"
)

type leaveRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveReader {
	return &leaveRepositoryImpl{db: db}
}

// FindApprovedOverlapping implements leave.LeaveReader.
func (r *leaveRepositoryImpl) FindApprovedOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]leave.Record, error) {
	q := GetQuerier(ctx, r.db)

	// Dates are compared as calendar days; the caller's instants are reduced
	// to dates in their own zone.
	query := `
		SELECT id, employee_id, leave_type, start_date, end_date, leave_status, reason, created_at
		FROM leave_requests
		WHERE employee_id = $1 AND leave_status = $2
			AND start_date <= $4::date AND end_date >= $3::date
		ORDER BY start_date
	`

	rows, err := q.Query(ctx, query, employeeID, leave.LeaveStatusApproved, start.Format(time.DateOnly), end.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var records []leave.Record
	for rows.Next() {
		var rec leave.Record
		err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.LeaveType, &rec.StartDate, &rec.EndDate,
			&rec.LeaveStatus, &rec.Reason, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leave requests: %w", err)
	}

	return records, nil
}
