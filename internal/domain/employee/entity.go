package employee

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                  string
	EmployeeCode        string
	FullName            string
	Email               string
	HireDate            *time.Time
	EmploymentStatus    EmploymentStatus
	CurrentBasicSalary  decimal.Decimal
	SalaryHistory       []SalaryHistoryEntry
	CarryForwardLeave   float64
	LeaveBalanceHistory []LedgerEntry
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// SalaryHistoryEntry is an effective-dated basic salary override.
type SalaryHistoryEntry struct {
	BasicSalary   decimal.Decimal
	EffectiveFrom time.Time
}

// LedgerEntry is one persisted month of the leave balance ledger. Entries are
// never updated once written.
type LedgerEntry struct {
	Month        int       `json:"month"`
	Year         int       `json:"year"`
	Earned       float64   `json:"earned"`
	Used         float64   `json:"used"`
	Previous     float64   `json:"previous"`
	CarryForward float64   `json:"carry_forward"`
	CreatedAt    time.Time `json:"created_at"`
}

// Is reports whether the entry belongs to the given month.
func (e LedgerEntry) Is(month, year int) bool {
	return e.Month == month && e.Year == year
}

// LedgerEntryFor returns the stored entry for month/year, if any.
func (e Employee) LedgerEntryFor(month, year int) (LedgerEntry, bool) {
	for _, entry := range e.LeaveBalanceHistory {
		if entry.Is(month, year) {
			return entry, true
		}
	}
	return LedgerEntry{}, false
}

// LatestLedgerEntry returns the chronologically last ledger entry.
func (e Employee) LatestLedgerEntry() (LedgerEntry, bool) {
	if len(e.LeaveBalanceHistory) == 0 {
		return LedgerEntry{}, false
	}
	latest := e.LeaveBalanceHistory[0]
	for _, entry := range e.LeaveBalanceHistory[1:] {
		if entry.Year > latest.Year || (entry.Year == latest.Year && entry.Month > latest.Month) {
			latest = entry
		}
	}
	return latest, true
}

// calendarDate drops the clock and zone, keeping the date as read in t's own
// location. effective_from is a DATE and comes back as UTC midnight, while
// month ends are instants in the payroll zone.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BasicSalaryAt resolves the basic salary in force on the calendar date of at:
// the most recent history entry effective on or before it, else the current
// salary.
func (e Employee) BasicSalaryAt(at time.Time) decimal.Decimal {
	day := calendarDate(at)
	history := make([]SalaryHistoryEntry, 0, len(e.SalaryHistory))
	for _, h := range e.SalaryHistory {
		if !calendarDate(h.EffectiveFrom).After(day) {
			history = append(history, h)
		}
	}
	if len(history) == 0 {
		return e.CurrentBasicSalary
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].EffectiveFrom.After(history[j].EffectiveFrom)
	})
	return history[0].BasicSalary
}

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
