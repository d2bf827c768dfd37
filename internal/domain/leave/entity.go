package leave

import (
	"time"
)

type LeaveType int

const (
	LeaveTypeHalfDay  LeaveType = 1
	LeaveTypeFullDay  LeaveType = 2
	LeaveTypeMultiDay LeaveType = 3
)

type LeaveStatus int

const (
	LeaveStatusPending  LeaveStatus = 0
	LeaveStatusApproved LeaveStatus = 1
	LeaveStatusRejected LeaveStatus = 2
)

type Record struct {
	ID          string
	EmployeeID  string
	LeaveType   LeaveType
	StartDate   time.Time
	EndDate     time.Time
	LeaveStatus LeaveStatus
	Reason      *string
	CreatedAt   time.Time
}

func (r Record) IsApproved() bool {
	return r.LeaveStatus == LeaveStatusApproved
}
