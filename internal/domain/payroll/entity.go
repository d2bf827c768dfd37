package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period identifies a payroll calendar month.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func NewPeriod(month, year int) Period {
	return Period{Month: month, Year: year}
}

// PeriodOf returns the calendar month containing t, in t's location.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year > 0
}

func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Month: 1, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}

func (p Period) Before(o Period) bool {
	return p.Year < o.Year || (p.Year == o.Year && p.Month < o.Month)
}

func (p Period) After(o Period) bool {
	return o.Before(p)
}

// Start is midnight on the first day of the month.
func (p Period) Start(loc *time.Location) time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, loc)
}

// End is the last instant of the last day of the month.
func (p Period) End(loc *time.Location) time.Time {
	return p.Start(loc).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// SalaryComponent is one line of the percentage earnings split (Basic, HRA, ...).
type SalaryComponent struct {
	Title      string          `json:"title"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Settings is the organisation-wide payroll configuration, read once per computation.
type Settings struct {
	ID                string
	DefaultLeaveQuota float64
	SalaryComponents  []SalaryComponent
	UpdatedAt         time.Time
}

// DefaultSettings applies when no settings row has been saved yet.
func DefaultSettings() Settings {
	return Settings{
		DefaultLeaveQuota: 1,
		SalaryComponents: []SalaryComponent{
			{Title: "Basic", Percentage: decimal.NewFromInt(50)},
			{Title: "HRA", Percentage: decimal.NewFromInt(30)},
			{Title: "Other", Percentage: decimal.NewFromInt(20)},
		},
	}
}

// LedgerBranch records how the leave ledger resolved a month.
type LedgerBranch string

const (
	LedgerBranchReplay      LedgerBranch = "replay"
	LedgerBranchProvisional LedgerBranch = "provisional"
	LedgerBranchAdvance     LedgerBranch = "advance"
)

// LedgerSnapshot is the ledger state used for one salary computation.
type LedgerSnapshot struct {
	Branch       LedgerBranch `json:"branch"`
	Earned       float64      `json:"earned"`
	Used         float64      `json:"used"`
	Previous     float64      `json:"previous"`
	CarryForward float64      `json:"carry_forward"`
	UnpaidLeave  float64      `json:"unpaid_leave"`
}

type Earning struct {
	Title      string          `json:"title"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// SalaryBreakdown is the full computed result stored on a salary record.
type SalaryBreakdown struct {
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       string          `json:"employee_name"`
	EmployeeCode       string          `json:"employee_code"`
	Month              int             `json:"month"`
	Year               int             `json:"year"`
	IsCurrentMonth     bool            `json:"is_current_month"`
	WorkingDays        int             `json:"working_days"`
	PresentDays        int             `json:"present_days"`
	LeaveDays          float64         `json:"leave_days"`
	AbsentDays         float64         `json:"absent_days"`
	TotalHolidayDays   int             `json:"total_holiday_days"`
	WorkingHolidayDays int             `json:"working_holiday_days"`
	Ledger             LedgerSnapshot  `json:"leave_ledger"`
	TotalUnpaidDays    float64         `json:"total_unpaid_days"`
	BasicSalary        decimal.Decimal `json:"basic_salary"`
	PerDaySalary       decimal.Decimal `json:"per_day_salary"`
	Deduction          decimal.Decimal `json:"deduction"`
	FinalSalary        decimal.Decimal `json:"final_salary"`
	Earnings           []Earning       `json:"earnings"`
	ComputedAt         time.Time       `json:"computed_at"`
}

func (b SalaryBreakdown) Period() Period {
	return Period{Month: b.Month, Year: b.Year}
}

// SalaryRecord is the stored salary for one employee and month. It is created
// at most once and only its approval state changes afterwards.
type SalaryRecord struct {
	ID         string
	EmployeeID string
	Month      int
	Year       int
	Data       SalaryBreakdown
	IsApproved bool
	ApprovedAt *time.Time
	ApprovedBy *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r SalaryRecord) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

// BulkStatus is the outcome of one employee in a bulk run.
type BulkStatus string

const (
	BulkStatusApproved        BulkStatus = "approved"
	BulkStatusAlreadyApproved BulkStatus = "already_approved"
	BulkStatusComputed        BulkStatus = "computed"
	BulkStatusFailed          BulkStatus = "failed"
	BulkStatusSkipped         BulkStatus = "skipped"
)

// SalaryApprovedEvent is handed to the notifier after an approval.
type SalaryApprovedEvent struct {
	EmployeeID    string
	EmployeeName  string
	EmployeeEmail string
	Month         int
	Year          int
	FinalSalary   decimal.Decimal
	Breakdown     SalaryBreakdown
	ApprovedAt    time.Time
}
