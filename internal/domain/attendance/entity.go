package attendance

import (
	"time"
)

// Record is a single day of attendance. There is at most one per employee per day.
type Record struct {
	ID           string
	EmployeeID   string
	CheckInTime  time.Time
	CheckOutTime *time.Time
	LunchInTime  *time.Time
	LunchOutTime *time.Time
	OtherTime    []Interval
	CreatedAt    time.Time
}

// Interval is a break taken outside lunch.
type Interval struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}
