package leave

import (
	"context"
	"time"
)

type LeaveReader interface {
	// FindApprovedOverlapping returns approved leave whose range intersects [start, end].
	FindApprovedOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]Record, error)
}
