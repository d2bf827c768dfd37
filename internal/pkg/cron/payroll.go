package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
)

// PayrollJobs contains payroll-related cron jobs
type PayrollJobs struct {
	payrollService payroll.PayrollService
	location       *time.Location
	now            func() time.Time
}

// NewPayrollJobs creates payroll cron jobs evaluated in loc.
func NewPayrollJobs(payrollService payroll.PayrollService, loc *time.Location) *PayrollJobs {
	if loc == nil {
		loc = time.UTC
	}
	return &PayrollJobs{
		payrollService: payrollService,
		location:       loc,
		now:            time.Now,
	}
}

// RegisterJobs registers all payroll-related cron jobs
func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) error {
	// Stored salaries are idempotent, so re-running every few hours only fills
	// in employees that failed or were added late.
	return scheduler.AddJob(Job{
		Name:       "generate_previous_month_salaries",
		Interval:   6 * time.Hour,
		Timeout:    30 * time.Minute,
		RunOnStart: true,
		Fn:         j.GeneratePreviousMonth,
	})
}

// GeneratePreviousMonth computes and stores last month's salary for every
// active employee.
func (j *PayrollJobs) GeneratePreviousMonth(ctx context.Context) error {
	period := payroll.PeriodOf(j.now().In(j.location)).Previous()

	results, err := j.payrollService.GenerateForMonth(ctx, period.Month, period.Year)
	if err != nil {
		return fmt.Errorf("failed to generate salaries for %s: %w", period, err)
	}

	summary := payroll.SummarizeBulk(period, results)
	if failed := summary.Counts[string(payroll.BulkStatusFailed)]; failed > 0 {
		slog.Warn("Salary generation left failures", "period", period.String(), "failed", failed, "total", summary.Total)
	}
	return nil
}
