package holiday

import (
	"context"
	"time"
)

// Holiday is a company holiday spanning [StartDate, EndDate] inclusive.
type Holiday struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

type HolidayReader interface {
	FindOverlapping(ctx context.Context, start, end time.Time) ([]Holiday, error)
}
