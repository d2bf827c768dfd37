package attendance

import (
	"context"
	"time"
)

type AttendanceReader interface {
	// FindByEmployeeBetween returns records whose check-in falls within [start, end].
	FindByEmployeeBetween(ctx context.Context, employeeID string, start, end time.Time) ([]Record, error)
}
