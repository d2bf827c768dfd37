package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/employee"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/database"
)

const pgUniqueViolation = "23505"

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, employee_code, full_name, COALESCE(email, ''), hire_date, employment_status,
			basic_salary, carry_forward_leave, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.Email, &emp.HireDate, &emp.EmploymentStatus,
		&emp.CurrentBasicSalary, &emp.CarryForwardLeave, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id %s: %w", id, err)
	}

	emp.SalaryHistory, err = e.salaryHistory(ctx, q, id)
	if err != nil {
		return employee.Employee{}, err
	}
	emp.LeaveBalanceHistory, err = e.ledger(ctx, q, id)
	if err != nil {
		return employee.Employee{}, err
	}

	return emp, nil
}

func (e *employeeRepositoryImpl) salaryHistory(ctx context.Context, q database.Querier, id string) ([]employee.SalaryHistoryEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT basic_salary, effective_from
		FROM employee_salary_history
		WHERE employee_id = $1
		ORDER BY effective_from
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary history: %w", err)
	}
	defer rows.Close()

	var history []employee.SalaryHistoryEntry
	for rows.Next() {
		var h employee.SalaryHistoryEntry
		if err := rows.Scan(&h.BasicSalary, &h.EffectiveFrom); err != nil {
			return nil, fmt.Errorf("failed to scan salary history: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating salary history: %w", err)
	}
	return history, nil
}

func (e *employeeRepositoryImpl) ledger(ctx context.Context, q database.Querier, id string) ([]employee.LedgerEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT month, year, earned, used, previous, carry_forward, created_at
		FROM leave_balance_history
		WHERE employee_id = $1
		ORDER BY year, month
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave ledger: %w", err)
	}
	defer rows.Close()

	var entries []employee.LedgerEntry
	for rows.Next() {
		var l employee.LedgerEntry
		if err := rows.Scan(&l.Month, &l.Year, &l.Earned, &l.Used, &l.Previous, &l.CarryForward, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave ledger: %w", err)
		}
		entries = append(entries, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leave ledger: %w", err)
	}
	return entries, nil
}

// ListActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, employee_code, full_name, COALESCE(email, ''), hire_date, employment_status,
			basic_salary, carry_forward_leave, created_at, updated_at
		FROM employees
		WHERE employment_status = $1
		ORDER BY full_name, id
	`

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var emp employee.Employee
		err := rows.Scan(
			&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.Email, &emp.HireDate, &emp.EmploymentStatus,
			&emp.CurrentBasicSalary, &emp.CarryForwardLeave, &emp.CreatedAt, &emp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}

	return employees, nil
}

// AppendLedgerEntry implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) AppendLedgerEntry(ctx context.Context, employeeID string, entry employee.LedgerEntry) error {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO leave_balance_history (employee_id, month, year, earned, used, previous, carry_forward)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query, employeeID, entry.Month, entry.Year, entry.Earned, entry.Used, entry.Previous, entry.CarryForward)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return employee.ErrLedgerEntryExists
		}
		return fmt.Errorf("failed to append leave ledger entry: %w", err)
	}

	return nil
}

// SetCarryForward implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) SetCarryForward(ctx context.Context, employeeID string, value float64) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET carry_forward_leave = $1, updated_at = NOW()
		WHERE id = $2
	`

	tag, err := q.Exec(ctx, query, value, employeeID)
	if err != nil {
		return fmt.Errorf("failed to update carry forward leave: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}

	return nil
}
