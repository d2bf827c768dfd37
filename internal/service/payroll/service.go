package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/employee"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/keylock"
	"golang.org/x/sync/errgroup"
)

// Config holds the payroll run parameters.
type Config struct {
	Epoch       payroll.Period
	WorkerCount int
	Location    *time.Location
	Now         func() time.Time
}

type PayrollServiceImpl struct {
	tx           payroll.Transactor
	employeeRepo employee.EmployeeRepository
	salaryRepo   payroll.SalaryRecordRepository
	settingsRepo payroll.SettingsRepository
	aggregator   *Aggregator
	locker       keylock.Locker
	notifier     payroll.Notifier
	cfg          Config
}

func NewPayrollService(
	tx payroll.Transactor,
	employeeRepo employee.EmployeeRepository,
	salaryRepo payroll.SalaryRecordRepository,
	settingsRepo payroll.SettingsRepository,
	aggregator *Aggregator,
	locker keylock.Locker,
	notifier payroll.Notifier,
	cfg Config,
) payroll.PayrollService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if !cfg.Epoch.Valid() {
		cfg.Epoch = payroll.NewPeriod(5, 2025)
	}
	return &PayrollServiceImpl{
		tx:           tx,
		employeeRepo: employeeRepo,
		salaryRepo:   salaryRepo,
		settingsRepo: settingsRepo,
		aggregator:   aggregator,
		locker:       locker,
		notifier:     notifier,
		cfg:          cfg,
	}
}

// Helper to get the acting user from JWT context
func actorFromContext(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil || claims == nil {
		return "system"
	}
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID
	}
	return "system"
}

func (s *PayrollServiceImpl) now() time.Time {
	return s.cfg.Now().In(s.cfg.Location)
}

func (s *PayrollServiceImpl) currentPeriod() payroll.Period {
	return payroll.PeriodOf(s.now())
}

// ledgerStart is the later of the configured epoch and the employee's hire month.
func (s *PayrollServiceImpl) ledgerStart(emp employee.Employee) payroll.Period {
	start := s.cfg.Epoch
	if emp.HireDate != nil {
		hired := payroll.PeriodOf(*emp.HireDate)
		if hired.After(start) {
			start = hired
		}
	}
	return start
}

func lockKey(employeeID string) string {
	return "payroll:" + employeeID
}

// ========== SALARY ==========

func (s *PayrollServiceImpl) ComputeOrFetchSalary(ctx context.Context, employeeID string, month, year int) (payroll.SalaryBreakdown, error) {
	req := payroll.SalaryPeriodRequest{EmployeeID: employeeID, Month: month, Year: year}
	if err := req.Validate(); err != nil {
		return payroll.SalaryBreakdown{}, err
	}

	period := req.Period()
	if period.After(s.currentPeriod()) {
		return payroll.SalaryBreakdown{}, payroll.ErrFuturePeriod
	}

	breakdown, _, err := s.computeOrFetch(ctx, employeeID, period)
	return breakdown, err
}

// computeOrFetch returns the stored salary for a completed month, computing
// and storing it first if needed. The current month is computed on every
// call and never stored, so record is nil for it.
func (s *PayrollServiceImpl) computeOrFetch(ctx context.Context, employeeID string, period payroll.Period) (payroll.SalaryBreakdown, *payroll.SalaryRecord, error) {
	if period == s.currentPeriod() {
		breakdown, err := s.computeProvisional(ctx, employeeID, period)
		return breakdown, nil, err
	}

	existing, err := s.salaryRepo.GetByEmployeePeriod(ctx, employeeID, period.Month, period.Year)
	if err == nil {
		return existing.Data, &existing, nil
	}
	if !errors.Is(err, payroll.ErrSalaryRecordNotFound) {
		return payroll.SalaryBreakdown{}, nil, err
	}

	release, err := s.locker.Lock(ctx, lockKey(employeeID))
	if err != nil {
		if errors.Is(err, keylock.ErrNotObtained) {
			return payroll.SalaryBreakdown{}, nil, fmt.Errorf("%w: %v", payroll.ErrLockNotObtained, err)
		}
		return payroll.SalaryBreakdown{}, nil, err
	}
	defer release()

	var (
		breakdown payroll.SalaryBreakdown
		record    *payroll.SalaryRecord
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// Another request may have stored it while we waited for the lock.
		existing, err := s.salaryRepo.GetByEmployeePeriod(txCtx, employeeID, period.Month, period.Year)
		if err == nil {
			breakdown, record = existing.Data, &existing
			return nil
		}
		if !errors.Is(err, payroll.ErrSalaryRecordNotFound) {
			return err
		}

		emp, err := s.employeeRepo.GetByID(txCtx, employeeID)
		if err != nil {
			return err
		}

		start := s.ledgerStart(emp)
		if period.Before(start) {
			return fmt.Errorf("%w: ledger starts at %s", payroll.ErrBeforeLedgerStart, start)
		}

		settings, err := s.loadSettings(txCtx)
		if err != nil {
			return err
		}

		computed, decision, err := s.calculate(txCtx, emp, period, start, settings)
		if err != nil {
			return err
		}
		breakdown = computed

		if decision.Persist {
			if err := s.employeeRepo.AppendLedgerEntry(txCtx, emp.ID, decision.Entry); err != nil {
				return err
			}
			if err := s.employeeRepo.SetCarryForward(txCtx, emp.ID, decision.Entry.CarryForward); err != nil {
				return err
			}
			slog.Info("Leave ledger advanced",
				"employee_id", emp.ID,
				"period", period.String(),
				"carry_forward", decision.Entry.CarryForward,
			)
		}

		if computed.IsCurrentMonth {
			return nil
		}

		stored, created, err := s.salaryRepo.CreateIfAbsent(txCtx, payroll.SalaryRecord{
			ID:         uuid.NewString(),
			EmployeeID: emp.ID,
			Month:      period.Month,
			Year:       period.Year,
			Data:       computed,
		})
		if err != nil {
			return err
		}
		if !created {
			slog.Warn("Salary record already existed, returning stored record",
				"employee_id", emp.ID, "period", period.String())
		}
		breakdown, record = stored.Data, &stored
		return nil
	})
	if errors.Is(err, employee.ErrLedgerEntryExists) {
		// Another process advanced the ledger for this month, which only
		// happens if our lock expired while it was storing the same salary.
		stored, getErr := s.salaryRepo.GetByEmployeePeriod(ctx, employeeID, period.Month, period.Year)
		if getErr == nil {
			slog.Warn("Ledger already advanced by a concurrent computation, returning stored record",
				"employee_id", employeeID, "period", period.String())
			return stored.Data, &stored, nil
		}
		if !errors.Is(getErr, payroll.ErrSalaryRecordNotFound) {
			return payroll.SalaryBreakdown{}, nil, getErr
		}
	}
	if err != nil {
		var gap *payroll.LedgerGapError
		if errors.As(err, &gap) {
			slog.Warn("Leave ledger gap, salary not computed",
				"employee_id", gap.EmployeeID,
				"requested", gap.Requested.String(),
				"expected", gap.Expected.String(),
			)
		}
		return payroll.SalaryBreakdown{}, nil, err
	}

	return breakdown, record, nil
}

// computeProvisional evaluates the current month. Nothing is written, so it
// neither takes the employee lock nor opens a transaction.
func (s *PayrollServiceImpl) computeProvisional(ctx context.Context, employeeID string, period payroll.Period) (payroll.SalaryBreakdown, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return payroll.SalaryBreakdown{}, err
	}

	start := s.ledgerStart(emp)
	if period.Before(start) {
		return payroll.SalaryBreakdown{}, fmt.Errorf("%w: ledger starts at %s", payroll.ErrBeforeLedgerStart, start)
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return payroll.SalaryBreakdown{}, err
	}

	breakdown, _, err := s.calculate(ctx, emp, period, start, settings)
	return breakdown, err
}

func (s *PayrollServiceImpl) calculate(ctx context.Context, emp employee.Employee, period, start payroll.Period, settings payroll.Settings) (payroll.SalaryBreakdown, LedgerDecision, error) {
	now := s.now()
	isCurrent := period == payroll.PeriodOf(now)

	monthStart := period.Start(s.cfg.Location)
	monthEnd := period.End(s.cfg.Location)
	effectiveEnd := monthEnd
	if isCurrent && now.Before(monthEnd) {
		effectiveEnd = now
	}

	summary, err := s.aggregator.Summarize(ctx, emp.ID, monthStart, monthEnd, effectiveEnd)
	if err != nil {
		return payroll.SalaryBreakdown{}, LedgerDecision{}, err
	}

	decision, err := ResolveLedger(LedgerInput{
		EmployeeID:        emp.ID,
		History:           emp.LeaveBalanceHistory,
		CarryForwardLeave: emp.CarryForwardLeave,
		Period:            period,
		Start:             start,
		DefaultLeaveQuota: settings.DefaultLeaveQuota,
		ChargedDays:       summary.ChargedDays(),
		IsCurrentMonth:    isCurrent,
	})
	if err != nil {
		return payroll.SalaryBreakdown{}, LedgerDecision{}, err
	}

	basic := emp.BasicSalaryAt(monthEnd)
	unpaid := decision.Snapshot.UnpaidLeave
	amounts := CalculateSalary(SalaryInput{
		BasicSalary:     basic,
		WorkingDays:     summary.WorkingDays,
		TotalUnpaidDays: unpaid,
		Components:      settings.SalaryComponents,
	})

	return payroll.SalaryBreakdown{
		EmployeeID:         emp.ID,
		EmployeeName:       emp.FullName,
		EmployeeCode:       emp.EmployeeCode,
		Month:              period.Month,
		Year:               period.Year,
		IsCurrentMonth:     isCurrent,
		WorkingDays:        summary.WorkingDays,
		PresentDays:        summary.PresentDays,
		LeaveDays:          summary.LeaveDays,
		AbsentDays:         summary.AbsentDays,
		TotalHolidayDays:   summary.TotalHolidayDays,
		WorkingHolidayDays: summary.WorkingHolidayDays,
		Ledger:             decision.Snapshot,
		TotalUnpaidDays:    unpaid,
		BasicSalary:        basic,
		PerDaySalary:       amounts.PerDaySalary,
		Deduction:          amounts.Deduction,
		FinalSalary:        amounts.FinalSalary,
		Earnings:           amounts.Earnings,
		ComputedAt:         now.UTC().Truncate(time.Second),
	}, decision, nil
}

func (s *PayrollServiceImpl) ApproveSalary(ctx context.Context, employeeID string, month, year int) (payroll.SalaryRecord, error) {
	req := payroll.SalaryPeriodRequest{EmployeeID: employeeID, Month: month, Year: year}
	if err := req.Validate(); err != nil {
		return payroll.SalaryRecord{}, err
	}

	record, _, err := s.approve(ctx, employeeID, req.Period())
	return record, err
}

// approve computes the month if needed and approves it. Only the call that
// flips the approval dispatches a notification.
func (s *PayrollServiceImpl) approve(ctx context.Context, employeeID string, period payroll.Period) (payroll.SalaryRecord, bool, error) {
	if !period.Before(s.currentPeriod()) {
		return payroll.SalaryRecord{}, false, payroll.ErrApprovalWindow
	}

	_, record, err := s.computeOrFetch(ctx, employeeID, period)
	if err != nil {
		return payroll.SalaryRecord{}, false, err
	}
	if record == nil {
		return payroll.SalaryRecord{}, false, payroll.ErrApprovalWindow
	}
	if record.IsApproved {
		return *record, false, nil
	}

	approved, changed, err := s.salaryRepo.Approve(ctx, employeeID, period.Month, period.Year, actorFromContext(ctx))
	if err != nil {
		return payroll.SalaryRecord{}, false, err
	}
	if changed {
		s.dispatchApproval(ctx, approved)
	}
	return approved, changed, nil
}

func (s *PayrollServiceImpl) dispatchApproval(ctx context.Context, record payroll.SalaryRecord) {
	if s.notifier == nil {
		return
	}

	event := payroll.SalaryApprovedEvent{
		EmployeeID:   record.EmployeeID,
		EmployeeName: record.Data.EmployeeName,
		Month:        record.Month,
		Year:         record.Year,
		FinalSalary:  record.Data.FinalSalary,
		Breakdown:    record.Data,
		ApprovedAt:   s.now(),
	}
	if record.ApprovedAt != nil {
		event.ApprovedAt = *record.ApprovedAt
	}
	if emp, err := s.employeeRepo.GetByID(ctx, record.EmployeeID); err == nil {
		event.EmployeeEmail = emp.Email
	} else {
		slog.Warn("Failed to load employee for approval notification", "employee_id", record.EmployeeID, "error", err)
	}

	if err := s.notifier.NotifySalaryApproved(ctx, event); err != nil {
		slog.Error("Failed to queue salary approval notification",
			"employee_id", record.EmployeeID,
			"period", record.Period().String(),
			"error", err,
		)
	}
}

func (s *PayrollServiceImpl) ApproveAllForMonth(ctx context.Context, month, year int) ([]payroll.BulkResult, error) {
	req := payroll.PeriodRequest{Month: month, Year: year}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	period := req.Period()
	if period != s.currentPeriod().Previous() {
		return nil, payroll.ErrBulkApprovalWindow
	}

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("Bulk salary approval started", "period", period.String(), "employees", len(employees))
	results := s.runBulk(ctx, employees, func(ctx context.Context, emp employee.Employee) payroll.BulkResult {
		record, changed, err := s.approve(ctx, emp.ID, period)
		if err != nil {
			return failedResult(emp, err)
		}
		status := payroll.BulkStatusApproved
		if !changed {
			status = payroll.BulkStatusAlreadyApproved
		}
		final := record.Data.FinalSalary
		return payroll.BulkResult{EmployeeID: emp.ID, EmployeeName: emp.FullName, Status: status, FinalSalary: &final}
	})
	logBulkSummary("Bulk salary approval finished", period, results)

	return results, nil
}

// GenerateForMonth computes and stores salaries for every active employee
// without approving them.
func (s *PayrollServiceImpl) GenerateForMonth(ctx context.Context, month, year int) ([]payroll.BulkResult, error) {
	req := payroll.PeriodRequest{Month: month, Year: year}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	period := req.Period()
	if !period.Before(s.currentPeriod()) {
		return nil, fmt.Errorf("%w: %s is not a completed month", payroll.ErrInvalidPeriod, period)
	}

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	results := s.runBulk(ctx, employees, func(ctx context.Context, emp employee.Employee) payroll.BulkResult {
		breakdown, _, err := s.computeOrFetch(ctx, emp.ID, period)
		if err != nil {
			return failedResult(emp, err)
		}
		final := breakdown.FinalSalary
		return payroll.BulkResult{EmployeeID: emp.ID, EmployeeName: emp.FullName, Status: payroll.BulkStatusComputed, FinalSalary: &final}
	})
	logBulkSummary("Salary generation finished", period, results)

	return results, nil
}

// runBulk fans fn out over employees with at most WorkerCount in flight. fn
// never fails the group; each employee's outcome lands in its own slot, and
// employees not started before ctx ends are marked skipped.
func (s *PayrollServiceImpl) runBulk(ctx context.Context, employees []employee.Employee, fn func(ctx context.Context, emp employee.Employee) payroll.BulkResult) []payroll.BulkResult {
	results := make([]payroll.BulkResult, len(employees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.WorkerCount)

	for i, emp := range employees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = payroll.BulkResult{EmployeeID: emp.ID, EmployeeName: emp.FullName, Status: payroll.BulkStatusSkipped, Error: err.Error()}
				return nil
			}
			results[i] = fn(gctx, emp)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func failedResult(emp employee.Employee, err error) payroll.BulkResult {
	status := payroll.BulkStatusFailed
	if errors.Is(err, payroll.ErrBeforeLedgerStart) {
		status = payroll.BulkStatusSkipped
	}
	return payroll.BulkResult{EmployeeID: emp.ID, EmployeeName: emp.FullName, Status: status, Error: err.Error()}
}

func logBulkSummary(msg string, period payroll.Period, results []payroll.BulkResult) {
	summary := payroll.SummarizeBulk(period, results)
	slog.Info(msg, "period", period.String(), "total", summary.Total, "counts", summary.Counts)
	for _, r := range results {
		if r.Status == payroll.BulkStatusFailed {
			slog.Warn("Bulk payroll item failed", "employee_id", r.EmployeeID, "period", period.String(), "error", r.Error)
		}
	}
}

func (s *PayrollServiceImpl) ListSalaries(ctx context.Context, month, year int) (payroll.ListSalaryResponse, error) {
	req := payroll.PeriodRequest{Month: month, Year: year}
	if err := req.Validate(); err != nil {
		return payroll.ListSalaryResponse{}, err
	}

	records, err := s.salaryRepo.ListByPeriod(ctx, month, year)
	if err != nil {
		return payroll.ListSalaryResponse{}, err
	}

	resp := payroll.ListSalaryResponse{
		Month:   month,
		Year:    year,
		Records: make([]payroll.SalaryRecordResponse, 0, len(records)),
		Summary: payroll.SalarySummary{
			TotalBasic:     decimal.Zero,
			TotalDeduction: decimal.Zero,
			TotalFinal:     decimal.Zero,
		},
	}
	for _, r := range records {
		resp.Records = append(resp.Records, payroll.NewSalaryRecordResponse(r))
		resp.Summary.TotalEmployees++
		if r.IsApproved {
			resp.Summary.ApprovedCount++
		} else {
			resp.Summary.PendingCount++
		}
		resp.Summary.TotalBasic = resp.Summary.TotalBasic.Add(r.Data.BasicSalary)
		resp.Summary.TotalDeduction = resp.Summary.TotalDeduction.Add(r.Data.Deduction)
		resp.Summary.TotalFinal = resp.Summary.TotalFinal.Add(r.Data.FinalSalary)
	}

	return resp, nil
}

// ========== LEDGER ==========

func (s *PayrollServiceImpl) GetLedger(ctx context.Context, employeeID string) (payroll.LedgerResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return payroll.LedgerResponse{}, err
	}

	entries := append([]employee.LedgerEntry(nil), emp.LeaveBalanceHistory...)
	sort.Slice(entries, func(i, j int) bool {
		a := payroll.NewPeriod(entries[i].Month, entries[i].Year)
		return a.Before(payroll.NewPeriod(entries[j].Month, entries[j].Year))
	})
	if entries == nil {
		entries = []employee.LedgerEntry{}
	}

	start := s.ledgerStart(emp)
	return payroll.LedgerResponse{
		EmployeeID:        emp.ID,
		CarryForwardLeave: emp.CarryForwardLeave,
		Start:             start,
		NextExpected:      NextLedgerPeriod(emp.LeaveBalanceHistory, start),
		Entries:           entries,
	}, nil
}

// BackfillLedger computes every month from the next expected ledger month up
// to and including the given one, in order, stopping at the first failure.
func (s *PayrollServiceImpl) BackfillLedger(ctx context.Context, employeeID string, month, year int) (payroll.BackfillResponse, error) {
	req := payroll.SalaryPeriodRequest{EmployeeID: employeeID, Month: month, Year: year}
	if err := req.Validate(); err != nil {
		return payroll.BackfillResponse{}, err
	}

	until := req.Period()
	if !until.Before(s.currentPeriod()) {
		return payroll.BackfillResponse{}, fmt.Errorf("%w: backfill is limited to completed months", payroll.ErrInvalidPeriod)
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return payroll.BackfillResponse{}, err
	}

	resp := payroll.BackfillResponse{EmployeeID: emp.ID, Processed: []payroll.BackfillMonth{}}
	next := NextLedgerPeriod(emp.LeaveBalanceHistory, s.ledgerStart(emp))

	for p := next; !p.After(until); p = p.Next() {
		if err := ctx.Err(); err != nil {
			return resp, err
		}

		breakdown, _, err := s.computeOrFetch(ctx, emp.ID, p)
		if err != nil {
			return resp, fmt.Errorf("backfill stopped at %s: %w", p, err)
		}
		resp.Processed = append(resp.Processed, payroll.BackfillMonth{
			Month:        p.Month,
			Year:         p.Year,
			LedgerBranch: breakdown.Ledger.Branch,
			CarryForward: breakdown.Ledger.CarryForward,
			FinalSalary:  breakdown.FinalSalary,
		})
	}

	slog.Info("Leave ledger backfilled", "employee_id", emp.ID, "months", len(resp.Processed), "until", until.String())
	return resp, nil
}

// ========== SETTINGS ==========

func (s *PayrollServiceImpl) loadSettings(ctx context.Context) (payroll.Settings, error) {
	settings, err := s.settingsRepo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, payroll.ErrSettingsNotFound) {
			return payroll.DefaultSettings(), nil
		}
		return payroll.Settings{}, err
	}
	return settings, nil
}

func toSettingsResponse(settings payroll.Settings) payroll.SettingsResponse {
	resp := payroll.SettingsResponse{
		ID:                settings.ID,
		DefaultLeaveQuota: settings.DefaultLeaveQuota,
		SalaryComponents:  settings.SalaryComponents,
		IsDefault:         settings.ID == "",
	}
	if !settings.UpdatedAt.IsZero() {
		updatedAt := settings.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

func (s *PayrollServiceImpl) GetSettings(ctx context.Context) (payroll.SettingsResponse, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}
	return toSettingsResponse(settings), nil
}

func (s *PayrollServiceImpl) UpdateSettings(ctx context.Context, req payroll.UpdateSettingsRequest) (payroll.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SettingsResponse{}, err
	}

	current, err := s.loadSettings(ctx)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}

	// Apply updates
	if req.DefaultLeaveQuota != nil {
		current.DefaultLeaveQuota = *req.DefaultLeaveQuota
	}
	if req.SalaryComponents != nil {
		components := make([]payroll.SalaryComponent, 0, len(req.SalaryComponents))
		for _, c := range req.SalaryComponents {
			components = append(components, payroll.SalaryComponent{Title: c.Title, Percentage: c.Percentage})
		}
		current.SalaryComponents = components
	}

	updated, err := s.settingsRepo.UpsertSettings(ctx, current)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}

	slog.Info("Payroll settings updated", "by", actorFromContext(ctx), "default_leave_quota", updated.DefaultLeaveQuota)
	return toSettingsResponse(updated), nil
}
