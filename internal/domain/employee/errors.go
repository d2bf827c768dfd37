package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrLedgerEntryExists = errors.New("leave ledger entry already exists for this month")
)
