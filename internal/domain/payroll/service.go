package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	// Salary
	ComputeOrFetchSalary(ctx context.Context, employeeID string, month, year int) (SalaryBreakdown, error)
	ApproveSalary(ctx context.Context, employeeID string, month, year int) (SalaryRecord, error)
	ApproveAllForMonth(ctx context.Context, month, year int) ([]BulkResult, error)
	GenerateForMonth(ctx context.Context, month, year int) ([]BulkResult, error)
	ListSalaries(ctx context.Context, month, year int) (ListSalaryResponse, error)
	ExportSalaries(ctx context.Context, month, year int, w io.Writer) error

	// Ledger
	GetLedger(ctx context.Context, employeeID string) (LedgerResponse, error)
	BackfillLedger(ctx context.Context, employeeID string, month, year int) (BackfillResponse, error)

	// Settings
	GetSettings(ctx context.Context) (SettingsResponse, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)
}

// Notifier delivers approval notifications. Implementations must not block the
// caller on delivery.
type Notifier interface {
	NotifySalaryApproved(ctx context.Context, event SalaryApprovedEvent) error
}
