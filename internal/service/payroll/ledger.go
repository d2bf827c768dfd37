package payroll

import (
	"math"

	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/employee"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
)

type LedgerInput struct {
	EmployeeID        string
	History           []employee.LedgerEntry
	CarryForwardLeave float64
	Period            payroll.Period
	Start             payroll.Period
	DefaultLeaveQuota float64
	ChargedDays       float64
	IsCurrentMonth    bool
}

// LedgerDecision is the resolved ledger state. Entry is only meaningful when
// Persist is true.
type LedgerDecision struct {
	Snapshot payroll.LedgerSnapshot
	Persist  bool
	Entry    employee.LedgerEntry
}

// ResolveLedger decides how a month is charged against the leave balance:
// a stored month is replayed, the current month is provisional, and a past
// month without an entry advances the ledger only when it directly follows
// the latest entry (or is the ledger start). Anything else is a gap.
func ResolveLedger(in LedgerInput) (LedgerDecision, error) {
	emp := employee.Employee{ID: in.EmployeeID, LeaveBalanceHistory: in.History}

	if entry, ok := emp.LedgerEntryFor(in.Period.Month, in.Period.Year); ok {
		return LedgerDecision{
			Snapshot: payroll.LedgerSnapshot{
				Branch:       payroll.LedgerBranchReplay,
				Earned:       entry.Earned,
				Used:         entry.Used,
				Previous:     entry.Previous,
				CarryForward: entry.CarryForward,
				UnpaidLeave:  math.Max(in.ChargedDays-entry.Used, 0),
			},
		}, nil
	}

	previous := in.CarryForwardLeave
	earned := in.DefaultLeaveQuota
	used := math.Min(in.ChargedDays, previous+earned)
	snapshot := payroll.LedgerSnapshot{
		Earned:       earned,
		Used:         used,
		Previous:     previous,
		CarryForward: previous + earned - used,
		UnpaidLeave:  math.Max(in.ChargedDays-used, 0),
	}

	if in.IsCurrentMonth {
		snapshot.Branch = payroll.LedgerBranchProvisional
		return LedgerDecision{Snapshot: snapshot}, nil
	}

	expected := NextLedgerPeriod(in.History, in.Start)
	if in.Period != expected {
		return LedgerDecision{}, &payroll.LedgerGapError{
			EmployeeID: in.EmployeeID,
			Requested:  in.Period,
			Expected:   expected,
		}
	}

	snapshot.Branch = payroll.LedgerBranchAdvance
	return LedgerDecision{
		Snapshot: snapshot,
		Persist:  true,
		Entry: employee.LedgerEntry{
			Month:        in.Period.Month,
			Year:         in.Period.Year,
			Earned:       snapshot.Earned,
			Used:         snapshot.Used,
			Previous:     snapshot.Previous,
			CarryForward: snapshot.CarryForward,
		},
	}, nil
}

// NextLedgerPeriod is the only month the ledger may advance to next.
func NextLedgerPeriod(history []employee.LedgerEntry, start payroll.Period) payroll.Period {
	emp := employee.Employee{LeaveBalanceHistory: history}
	latest, ok := emp.LatestLedgerEntry()
	if !ok {
		return start
	}
	return payroll.NewPeriod(latest.Month, latest.Year).Next()
}
