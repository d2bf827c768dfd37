package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrSettingsNotFound        = errors.New("payroll settings not found")
	ErrSalaryRecordNotFound    = errors.New("salary record not found")
	ErrInvalidPeriod           = errors.New("invalid payroll period")
	ErrFuturePeriod            = errors.New("payroll period is in the future")
	ErrBeforeLedgerStart       = errors.New("payroll period is before the leave ledger start")
	ErrApprovalWindow          = errors.New("salary can only be approved for a completed month")
	ErrBulkApprovalWindow      = errors.New("bulk approval is only allowed for the previous calendar month")
	ErrLedgerGap               = errors.New("leave ledger has a gap")
	ErrLockNotObtained         = errors.New("payroll computation already in progress for this employee")
	ErrInvalidSalaryComponents = errors.New("salary component percentages must sum to 100")
)

// LedgerGapError reports a month that cannot be advanced because the
// preceding month has no ledger entry yet.
type LedgerGapError struct {
	EmployeeID string
	Requested  Period
	Expected   Period
}

func (e *LedgerGapError) Error() string {
	return fmt.Sprintf("%s: employee %s requested %s but next expected month is %s",
		ErrLedgerGap, e.EmployeeID, e.Requested, e.Expected)
}

func (e *LedgerGapError) Unwrap() error {
	return ErrLedgerGap
}
