package payroll

import "context"

type SalaryRecordRepository interface {
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (SalaryRecord, error)
	// CreateIfAbsent inserts the record unless one exists for the same employee
	// and month. It always returns the stored record; created is false when an
	// existing record was returned unchanged.
	CreateIfAbsent(ctx context.Context, record SalaryRecord) (stored SalaryRecord, created bool, err error)
	// Approve marks the record approved. changed is false when it already was.
	Approve(ctx context.Context, employeeID string, month, year int, approvedBy string) (record SalaryRecord, changed bool, err error)
	ListByPeriod(ctx context.Context, month, year int) ([]SalaryRecord, error)
}

type SettingsRepository interface {
	GetSettings(ctx context.Context) (Settings, error)
	UpsertSettings(ctx context.Context, settings Settings) (Settings, error)
}

// Transactor runs fn in a single database transaction carried by the context
// passed to fn.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
