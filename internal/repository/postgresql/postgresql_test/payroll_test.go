package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/employee"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/repository/postgresql"
)

func TestEmployeeRepository_Ledger(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)
	id := setup.createTestEmployee(t, "EMP-001", 30000)

	entry := employee.LedgerEntry{Month: 5, Year: 2025, Earned: 1, Used: 0.5, Previous: 0, CarryForward: 0.5}
	require.NoError(t, repo.AppendLedgerEntry(ctx, id, entry))
	require.NoError(t, repo.SetCarryForward(ctx, id, 0.5))

	err := repo.AppendLedgerEntry(ctx, id, entry)
	assert.True(t, errors.Is(err, employee.ErrLedgerEntryExists))

	emp, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "EMP-001", emp.EmployeeCode)
	assert.Equal(t, 0.5, emp.CarryForwardLeave)
	assert.True(t, emp.CurrentBasicSalary.Equal(decimal.NewFromInt(30000)))
	require.Len(t, emp.LeaveBalanceHistory, 1)
	assert.Equal(t, 0.5, emp.LeaveBalanceHistory[0].CarryForward)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, employee.ErrEmployeeNotFound))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestSalaryRecordRepository_CreateIfAbsentAndApprove(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewSalaryRecordRepository(setup.DB)
	id := setup.createTestEmployee(t, "EMP-002", 30000)

	first := payroll.SalaryRecord{
		ID:         uuid.NewString(),
		EmployeeID: id,
		Month:      5,
		Year:       2025,
		Data: payroll.SalaryBreakdown{
			EmployeeID:  id,
			Month:       5,
			Year:        2025,
			FinalSalary: decimal.NewFromInt(28636),
			ComputedAt:  time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC),
		},
	}

	stored, created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, stored.Data.FinalSalary.Equal(decimal.NewFromInt(28636)))

	second := first
	second.ID = uuid.NewString()
	second.Data.FinalSalary = decimal.NewFromInt(1)
	again, created, err := repo.CreateIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.Data.FinalSalary.Equal(decimal.NewFromInt(28636)))

	approved, changed, err := repo.Approve(ctx, id, 5, 2025, "manager-1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, approved.IsApproved)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "manager-1", *approved.ApprovedBy)

	_, changed, err = repo.Approve(ctx, id, 5, 2025, "manager-2")
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = repo.Approve(ctx, id, 6, 2025, "manager-1")
	assert.True(t, errors.Is(err, payroll.ErrSalaryRecordNotFound))

	list, err := repo.ListByPeriod(ctx, 5, 2025)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSettingsRepository_Upsert(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewSettingsRepository(setup.DB)

	_, err := repo.GetSettings(ctx)
	assert.True(t, errors.Is(err, payroll.ErrSettingsNotFound))

	saved, err := repo.UpsertSettings(ctx, payroll.DefaultSettings())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	update := saved
	update.DefaultLeaveQuota = 1.5
	updated, err := repo.UpsertSettings(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, 1.5, updated.DefaultLeaveQuota)
	require.Len(t, updated.SalaryComponents, 3)
	assert.True(t, updated.SalaryComponents[1].Percentage.Equal(decimal.NewFromInt(30)))
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	tx := postgresql.NewTransactor(setup.DB)
	repo := postgresql.NewEmployeeRepository(setup.DB)
	id := setup.createTestEmployee(t, "EMP-003", 30000)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := repo.AppendLedgerEntry(ctx, id, employee.LedgerEntry{Month: 5, Year: 2025, Earned: 1, CarryForward: 1}); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	emp, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, emp.LeaveBalanceHistory)
}
