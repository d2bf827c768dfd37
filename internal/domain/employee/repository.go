package employee

import "context"

type EmployeeRepository interface {
	// GetByID loads the employee together with salary history and the leave ledger.
	GetByID(ctx context.Context, id string) (Employee, error)
	// ListActive returns active employees without history or ledger.
	ListActive(ctx context.Context) ([]Employee, error)
	AppendLedgerEntry(ctx context.Context, employeeID string, entry LedgerEntry) error
	SetCarryForward(ctx context.Context, employeeID string, value float64) error
}
