package payroll

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/employee"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/validator"
	"github.com/xuri/excelize/v2"
)

const (
	empA = "6f1c2a7e-3b1d-4c55-9e0a-00000000aaaa"
	empB = "6f1c2a7e-3b1d-4c55-9e0a-00000000bbbb"
	empC = "6f1c2a7e-3b1d-4c55-9e0a-00000000cccc"
)

var (
	may2025  = payroll.NewPeriod(5, 2025)
	june2025 = payroll.NewPeriod(6, 2025)
	july2025 = payroll.NewPeriod(7, 2025)
)

func assertAmount(t *testing.T, want int64, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(want)), append([]interface{}{"want %d, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestComputeOrFetchSalary_WorkedExample(t *testing.T) {
	h := newHarness(time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.attendFirstWorkingDays(empA, may2025, 20)

	got, err := h.svc.ComputeOrFetchSalary(context.Background(), empA, 5, 2025)
	require.NoError(t, err)

	assert.False(t, got.IsCurrentMonth)
	assert.Equal(t, 22, got.WorkingDays)
	assert.Equal(t, 20, got.PresentDays)
	assert.Equal(t, 0.0, got.LeaveDays)
	assert.Equal(t, 2.0, got.AbsentDays)

	assert.Equal(t, payroll.LedgerSnapshot{
		Branch:       payroll.LedgerBranchAdvance,
		Earned:       1,
		Used:         1,
		Previous:     0,
		CarryForward: 0,
		UnpaidLeave:  1,
	}, got.Ledger)
	assert.Equal(t, 1.0, got.TotalUnpaidDays)

	assertAmount(t, 30000, got.BasicSalary)
	assertAmount(t, 1364, got.PerDaySalary)
	assertAmount(t, 1364, got.Deduction)
	assertAmount(t, 28636, got.FinalSalary)

	require.Len(t, got.Earnings, 3)
	assertAmount(t, 15000, got.Earnings[0].Amount)
	assertAmount(t, 9000, got.Earnings[1].Amount)
	assertAmount(t, 6000, got.Earnings[2].Amount)

	history := h.employees.history(empA)
	require.Len(t, history, 1)
	assert.True(t, history[0].Is(5, 2025))
	assert.Equal(t, 0.0, history[0].CarryForward)
}

func TestComputeOrFetchSalary_Idempotent(t *testing.T) {
	h := newHarness(time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.attendFirstWorkingDays(empA, may2025, 20)
	ctx := context.Background()

	first, err := h.svc.ComputeOrFetchSalary(ctx, empA, 5, 2025)
	require.NoError(t, err)

	// Attendance changing after the fact must not alter a stored month.
	h.attendAllWorkingDays(empA, may2025)

	second, err := h.svc.ComputeOrFetchSalary(ctx, empA, 5, 2025)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))

	assert.Equal(t, 1, h.employees.appendCalls)
	assert.Equal(t, 1, h.salaries.createCalls)
}

func TestComputeOrFetchSalary_Concurrent(t *testing.T) {
	h := newHarness(time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.attendFirstWorkingDays(empA, may2025, 20)

	const callers = 10
	results := make([]payroll.SalaryBreakdown, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := h.svc.ComputeOrFetchSalary(context.Background(), empA, 5, 2025)
			if !assert.NoError(t, err) {
				return
			}
			results[i] = got
		}()
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Equal(t, results[0], results[i])
	}
	assert.Equal(t, 1, h.employees.appendCalls)
	assert.Equal(t, 1, h.salaries.createCalls)
	assert.Len(t, h.employees.history(empA), 1)
}

func TestComputeOrFetchSalary_LedgerChainsMonthToMonth(t *testing.T) {
	h := newHarness(time.Date(2025, time.September, 10, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.attendAllWorkingDays(empA, may2025)
	h.attendAllWorkingDays(empA, june2025)
	// July 2025 has 23 working days; three of them are missed.
	h.attendFirstWorkingDays(empA, july2025, 20)
	ctx := context.Background()

	for _, p := range []payroll.Period{may2025, june2025, july2025} {
		_, err := h.svc.ComputeOrFetchSalary(ctx, empA, p.Month, p.Year)
		require.NoError(t, err, p.String())
	}

	history := h.employees.history(empA)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.Equal(t, history[i-1].CarryForward, history[i].Previous, "entry %d", i)
	}
	assert.Equal(t, 1.0, history[0].CarryForward)
	assert.Equal(t, 2.0, history[1].CarryForward)
	assert.Equal(t, employee.LedgerEntry{Month: 7, Year: 2025, Earned: 1, Used: 3, Previous: 2, CarryForward: 0}, history[2])

	july, err := h.svc.ComputeOrFetchSalary(ctx, empA, 7, 2025)
	require.NoError(t, err)
	assert.Equal(t, 0.0, july.TotalUnpaidDays)
	assertAmount(t, 30000, july.FinalSalary)
}

func TestComputeOrFetchSalary_ReplaysStoredLedgerEntry(t *testing.T) {
	emp := newEmployee(empA, 30000)
	emp.LeaveBalanceHistory = []employee.LedgerEntry{
		{Month: 5, Year: 2025, Earned: 1, Used: 0.5, Previous: 2, CarryForward: 2.5},
	}
	emp.CarryForwardLeave = 2.5
	h := newHarness(time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC), emp)
	h.attendFirstWorkingDays(empA, may2025, 20)

	got, err := h.svc.ComputeOrFetchSalary(context.Background(), empA, 5, 2025)
	require.NoError(t, err)

	assert.Equal(t, payroll.LedgerBranchReplay, got.Ledger.Branch)
	assert.Equal(t, 2.5, got.Ledger.CarryForward)
	assert.Equal(t, 1.5, got.TotalUnpaidDays)
	assertAmount(t, 2046, got.Deduction)
	assert.Equal(t, 0, h.employees.appendCalls)
	assert.Equal(t, 1, h.salaries.createCalls)
}

func TestComputeOrFetchSalary_RejectsLedgerGap(t *testing.T) {
	h := newHarness(time.Date(2025, time.September, 10, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.attendAllWorkingDays(empA, may2025)
	h.attendAllWorkingDays(empA, june2025)
	h.attendAllWorkingDays(empA, july2025)
	ctx := context.Background()

	_, err := h.svc.ComputeOrFetchSalary(ctx, empA, 5, 2025)
	require.NoError(t, err)

	_, err = h.svc.ComputeOrFetchSalary(ctx, empA, 7, 2025)
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrLedgerGap)

	var gap *payroll.LedgerGapError
	require.True(t, errors.As(err, &gap))
	assert.Equal(t, june2025, gap.Expected)
	assert.Equal(t, july2025, gap.Requested)

	assert.Len(t, h.employees.history(empA), 1)
	_, err = h.salaries.GetByEmployeePeriod(ctx, empA, 7, 2025)
	assert.ErrorIs(t, err, payroll.ErrSalaryRecordNotFound)

	resp, err := h.svc.BackfillLedger(ctx, empA, 7, 2025)
	require.NoError(t, err)
	require.Len(t, resp.Processed, 2)
	assert.Equal(t, 6, resp.Processed[0].Month)
	assert.Equal(t, 7, resp.Processed[1].Month)
	assert.Equal(t, payroll.LedgerBranchAdvance, resp.Processed[1].LedgerBranch)
	assert.Equal(t, 3.0, resp.Processed[1].CarryForward)
	assert.Len(t, h.employees.history(empA), 3)
}

func TestComputeOrFetchSalary_CurrentMonthIsProvisional(t *testing.T) {
	h := newHarness(time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.attendFirstWorkingDays(empA, may2025, 20)
	h.attendFirstWorkingDays(empA, june2025, 6)
	ctx := context.Background()

	_, err := h.svc.ComputeOrFetchSalary(ctx, empA, 5, 2025)
	require.NoError(t, err)

	got, err := h.svc.ComputeOrFetchSalary(ctx, empA, 6, 2025)
	require.NoError(t, err)

	assert.True(t, got.IsCurrentMonth)
	assert.Equal(t, payroll.LedgerBranchProvisional, got.Ledger.Branch)
	assert.Equal(t, 21, got.WorkingDays)
	assert.Equal(t, 6, got.PresentDays)

	assert.Len(t, h.employees.history(empA), 1)
	_, err = h.salaries.GetByEmployeePeriod(ctx, empA, 6, 2025)
	assert.ErrorIs(t, err, payroll.ErrSalaryRecordNotFound)
}

func TestComputeOrFetchSalary_CurrentMonthSkipsEmployeeLock(t *testing.T) {
	h := newHarness(time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.attendFirstWorkingDays(empA, may2025, 10)

	// a long-running computation for a completed month holds the lock
	release, err := h.svc.locker.Lock(context.Background(), lockKey(empA))
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := h.svc.ComputeOrFetchSalary(ctx, empA, 5, 2025)
	require.NoError(t, err)
	assert.True(t, got.IsCurrentMonth)
	assert.Equal(t, 10, got.PresentDays)
	assert.Zero(t, h.salaries.createCalls)
}

func TestComputeOrFetchSalary_LedgerAdvancedConcurrently(t *testing.T) {
	h := newHarness(time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.attendAllWorkingDays(empA, may2025)
	ctx := context.Background()

	// another process stored May between our read and our ledger write
	h.employees.onAppend = func(employeeID string, entry employee.LedgerEntry) error {
		_, _, err := h.salaries.CreateIfAbsent(ctx, payroll.SalaryRecord{
			ID:         "rec-other",
			EmployeeID: employeeID,
			Month:      entry.Month,
			Year:       entry.Year,
			Data:       payroll.SalaryBreakdown{EmployeeID: employeeID, Month: 5, Year: 2025, FinalSalary: decimal.NewFromInt(29999)},
		})
		require.NoError(t, err)
		return employee.ErrLedgerEntryExists
	}

	got, err := h.svc.ComputeOrFetchSalary(ctx, empA, 5, 2025)
	require.NoError(t, err)
	assertAmount(t, 29999, got.FinalSalary)

	h.employees.onAppend = func(employeeID string, entry employee.LedgerEntry) error {
		return employee.ErrLedgerEntryExists
	}
	_, err = h.svc.ComputeOrFetchSalary(ctx, empA, 5, 2025)
	require.NoError(t, err, "stored record is replayed without touching the ledger")
}

func TestComputeOrFetchSalary_LedgerEntryExistsWithoutRecord(t *testing.T) {
	h := newHarness(time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.employees.onAppend = func(employeeID string, entry employee.LedgerEntry) error {
		return employee.ErrLedgerEntryExists
	}

	_, err := h.svc.ComputeOrFetchSalary(context.Background(), empA, 5, 2025)
	assert.ErrorIs(t, err, employee.ErrLedgerEntryExists)
}

func TestComputeOrFetchSalary_SalaryHistoryInPayrollTimeZone(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	emp := newEmployee(empA, 50000)
	// DATE columns come back as UTC midnight
	emp.SalaryHistory = []employee.SalaryHistoryEntry{
		{BasicSalary: decimal.NewFromInt(30000), EffectiveFrom: time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)},
		{BasicSalary: decimal.NewFromInt(50000), EffectiveFrom: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)},
	}

	h := newHarness(time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC), emp)
	h.svc.cfg.Location = newYork
	h.attendAllWorkingDays(empA, may2025)

	got, err := h.svc.ComputeOrFetchSalary(context.Background(), empA, 5, 2025)
	require.NoError(t, err)

	assert.Equal(t, 22, got.WorkingDays)
	assert.Equal(t, 22, got.PresentDays)
	assertAmount(t, 30000, got.BasicSalary)
	assertAmount(t, 30000, got.FinalSalary)
}

func TestComputeOrFetchSalary_Errors(t *testing.T) {
	hired := time.Date(2025, time.July, 3, 0, 0, 0, 0, time.UTC)
	late := newEmployee(empB, 40000)
	late.HireDate = &hired

	h := newHarness(time.Date(2025, time.September, 10, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000), late)
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		month   int
		year    int
		wantErr error
	}{
		{name: "future month", id: empA, month: 10, year: 2025, wantErr: payroll.ErrFuturePeriod},
		{name: "unknown employee", id: "6f1c2a7e-3b1d-4c55-9e0a-00000000dddd", month: 5, year: 2025, wantErr: employee.ErrEmployeeNotFound},
		{name: "before hire month", id: empB, month: 6, year: 2025, wantErr: payroll.ErrBeforeLedgerStart},
		{name: "before epoch", id: empA, month: 4, year: 2025, wantErr: payroll.ErrBeforeLedgerStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.ComputeOrFetchSalary(ctx, tt.id, tt.month, tt.year)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("invalid input", func(t *testing.T) {
		_, err := h.svc.ComputeOrFetchSalary(ctx, "not-a-uuid", 13, 2025)
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		fields := verrs.ToMap()
		assert.Contains(t, fields, "employee_id")
		assert.Contains(t, fields, "month")
	})

	t.Run("ledger starts at hire month", func(t *testing.T) {
		got, err := h.svc.ComputeOrFetchSalary(ctx, empB, 7, 2025)
		require.NoError(t, err)
		assert.Equal(t, payroll.LedgerBranchAdvance, got.Ledger.Branch)
	})
}

func TestApproveSalary(t *testing.T) {
	h := newHarness(time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.attendFirstWorkingDays(empA, may2025, 20)
	ctx := context.Background()

	_, err := h.svc.ApproveSalary(ctx, empA, 6, 2025)
	assert.ErrorIs(t, err, payroll.ErrApprovalWindow)
	_, err = h.svc.ApproveSalary(ctx, empA, 7, 2025)
	assert.ErrorIs(t, err, payroll.ErrApprovalWindow)

	record, err := h.svc.ApproveSalary(ctx, empA, 5, 2025)
	require.NoError(t, err)
	assert.True(t, record.IsApproved)
	require.NotNil(t, record.ApprovedBy)
	assert.Equal(t, "system", *record.ApprovedBy)
	assertAmount(t, 28636, record.Data.FinalSalary)

	again, err := h.svc.ApproveSalary(ctx, empA, 5, 2025)
	require.NoError(t, err)
	assert.True(t, again.IsApproved)

	require.Equal(t, 1, h.notifier.count())
	event := h.notifier.events[0]
	assert.Equal(t, empA, event.EmployeeID)
	assert.Equal(t, "aaaa@example.com", event.EmployeeEmail)
	assertAmount(t, 28636, event.FinalSalary)
}

func TestApproveAllForMonth_Window(t *testing.T) {
	h := newHarness(time.Date(2025, time.August, 15, 10, 0, 0, 0, time.UTC),
		newEmployee(empA, 30000), newEmployee(empB, 45000))
	h.svc.cfg.Epoch = july2025
	h.attendAllWorkingDays(empA, july2025)
	h.attendAllWorkingDays(empB, july2025)
	ctx := context.Background()

	_, err := h.svc.ApproveAllForMonth(ctx, 8, 2025)
	assert.ErrorIs(t, err, payroll.ErrBulkApprovalWindow)
	_, err = h.svc.ApproveAllForMonth(ctx, 6, 2025)
	assert.ErrorIs(t, err, payroll.ErrBulkApprovalWindow)

	results, err := h.svc.ApproveAllForMonth(ctx, 7, 2025)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, payroll.BulkStatusApproved, r.Status, r.EmployeeID)
	}
	assert.Equal(t, 2, h.notifier.count())

	rec, err := h.salaries.GetByEmployeePeriod(ctx, empB, 7, 2025)
	require.NoError(t, err)
	assert.True(t, rec.IsApproved)

	results, err = h.svc.ApproveAllForMonth(ctx, 7, 2025)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, payroll.BulkStatusAlreadyApproved, r.Status, r.EmployeeID)
	}
	assert.Equal(t, 2, h.notifier.count())
}

func TestApproveAllForMonth_IsolatesFailures(t *testing.T) {
	h := newHarness(time.Date(2025, time.June, 3, 10, 0, 0, 0, time.UTC),
		newEmployee(empA, 30000), newEmployee(empB, 30000), newEmployee(empC, 30000))
	h.attendAllWorkingDays(empA, may2025)
	h.attendAllWorkingDays(empC, may2025)
	h.attendance.fail[empB] = errAttendanceDown

	results, err := h.svc.ApproveAllForMonth(context.Background(), 5, 2025)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, empA, results[0].EmployeeID)
	assert.Equal(t, payroll.BulkStatusApproved, results[0].Status)
	assert.Equal(t, empB, results[1].EmployeeID)
	assert.Equal(t, payroll.BulkStatusFailed, results[1].Status)
	assert.Contains(t, results[1].Error, errAttendanceDown.Error())
	assert.Nil(t, results[1].FinalSalary)
	assert.Equal(t, empC, results[2].EmployeeID)
	assert.Equal(t, payroll.BulkStatusApproved, results[2].Status)

	assert.Empty(t, h.employees.history(empB))
	assert.Equal(t, 2, h.notifier.count())

	summary := payroll.SummarizeBulk(may2025, results)
	assert.Equal(t, 3, summary.Total)
}

func TestApproveAllForMonth_CancelledContext(t *testing.T) {
	h := newHarness(time.Date(2025, time.June, 3, 10, 0, 0, 0, time.UTC),
		newEmployee(empA, 30000), newEmployee(empB, 30000))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := h.svc.ApproveAllForMonth(ctx, 5, 2025)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, payroll.BulkStatusSkipped, r.Status)
	}
	assert.Zero(t, h.salaries.createCalls)
}

func TestGenerateForMonth(t *testing.T) {
	h := newHarness(time.Date(2025, time.June, 3, 10, 0, 0, 0, time.UTC),
		newEmployee(empA, 30000), newEmployee(empB, 30000))
	h.attendAllWorkingDays(empA, may2025)
	h.attendAllWorkingDays(empB, may2025)
	ctx := context.Background()

	_, err := h.svc.GenerateForMonth(ctx, 6, 2025)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)

	results, err := h.svc.GenerateForMonth(ctx, 5, 2025)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, payroll.BulkStatusComputed, r.Status)
	}
	assert.Zero(t, h.notifier.count())

	list, err := h.svc.ListSalaries(ctx, 5, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Summary.TotalEmployees)
	assert.Equal(t, 2, list.Summary.PendingCount)
	assert.Equal(t, 0, list.Summary.ApprovedCount)
	assertAmount(t, 60000, list.Summary.TotalFinal)
}

func TestGetLedger(t *testing.T) {
	h := newHarness(time.Date(2025, time.July, 2, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.attendAllWorkingDays(empA, may2025)
	h.attendAllWorkingDays(empA, june2025)
	ctx := context.Background()

	_, err := h.svc.BackfillLedger(ctx, empA, 6, 2025)
	require.NoError(t, err)

	ledger, err := h.svc.GetLedger(ctx, empA)
	require.NoError(t, err)
	assert.Equal(t, may2025, ledger.Start)
	assert.Equal(t, july2025, ledger.NextExpected)
	assert.Equal(t, 2.0, ledger.CarryForwardLeave)
	require.Len(t, ledger.Entries, 2)
	assert.True(t, ledger.Entries[0].Is(5, 2025))

	_, err = h.svc.BackfillLedger(ctx, empA, 7, 2025)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestBackfillLedger_StopsAtFirstFailure(t *testing.T) {
	h := newHarness(time.Date(2025, time.August, 2, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.attendAllWorkingDays(empA, may2025)
	h.attendance.fail[empA] = errAttendanceDown

	resp, err := h.svc.BackfillLedger(context.Background(), empA, 7, 2025)
	require.Error(t, err)
	assert.ErrorIs(t, err, errAttendanceDown)
	assert.Empty(t, resp.Processed)
	assert.Empty(t, h.employees.history(empA))
}

func TestSettings(t *testing.T) {
	h := newHarness(time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC), newEmployee(empA, 30000))
	h.attendFirstWorkingDays(empA, may2025, 20)
	ctx := context.Background()

	defaults, err := h.svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, defaults.IsDefault)
	assert.Equal(t, 1.0, defaults.DefaultLeaveQuota)
	assert.Nil(t, defaults.UpdatedAt)

	quota := 2.0
	updated, err := h.svc.UpdateSettings(ctx, payroll.UpdateSettingsRequest{DefaultLeaveQuota: &quota})
	require.NoError(t, err)
	assert.False(t, updated.IsDefault)
	assert.Equal(t, 2.0, updated.DefaultLeaveQuota)
	assert.Len(t, updated.SalaryComponents, 3)

	_, err = h.svc.UpdateSettings(ctx, payroll.UpdateSettingsRequest{
		SalaryComponents: []payroll.SalaryComponentRequest{{Title: "Basic", Percentage: decimal.NewFromInt(90)}},
	})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))

	got, err := h.svc.ComputeOrFetchSalary(ctx, empA, 5, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Ledger.Used)
	assert.Equal(t, 0.0, got.TotalUnpaidDays)
	assertAmount(t, 30000, got.FinalSalary)
}

func TestExportSalaries(t *testing.T) {
	h := newHarness(time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC),
		newEmployee(empA, 30000), newEmployee(empB, 30000))
	h.attendFirstWorkingDays(empA, may2025, 20)
	h.attendAllWorkingDays(empB, may2025)
	ctx := context.Background()

	_, err := h.svc.GenerateForMonth(ctx, 5, 2025)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, h.svc.ExportSalaries(ctx, 5, 2025, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("2025-05")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, registerHeaders, rows[0])
	assert.Equal(t, "EMP-aaaa", rows[1][0])
	assert.Equal(t, "28636", rows[1][11])
	assert.Equal(t, "EMP-bbbb", rows[2][0])
	assert.Equal(t, "Total", rows[3][1])
	assert.Equal(t, "58636", rows[3][11])
}
