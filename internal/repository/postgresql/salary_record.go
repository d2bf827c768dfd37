package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/database"
)

type salaryRecordRepositoryImpl struct {
	db *database.DB
}

func NewSalaryRecordRepository(db *database.DB) payroll.SalaryRecordRepository {
	return &salaryRecordRepositoryImpl{db: db}
}

const salaryRecordColumns = `id, employee_id, month, year, data, is_approved, approved_at, approved_by, created_at, updated_at`

func scanSalaryRecord(row pgx.Row) (payroll.SalaryRecord, error) {
	var (
		rec  payroll.SalaryRecord
		data []byte
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Month, &rec.Year, &data,
		&rec.IsApproved, &rec.ApprovedAt, &rec.ApprovedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return payroll.SalaryRecord{}, err
	}
	if err := json.Unmarshal(data, &rec.Data); err != nil {
		return payroll.SalaryRecord{}, fmt.Errorf("failed to decode salary data for record %s: %w", rec.ID, err)
	}
	return rec, nil
}

// GetByEmployeePeriod implements payroll.SalaryRecordRepository.
func (r *salaryRecordRepositoryImpl) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + salaryRecordColumns + `
		FROM salary_records
		WHERE employee_id = $1 AND month = $2 AND year = $3
	`

	rec, err := scanSalaryRecord(q.QueryRow(ctx, query, employeeID, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to get salary record: %w", err)
	}

	return rec, nil
}

// CreateIfAbsent implements payroll.SalaryRecordRepository. The unique
// (employee_id, year, month) constraint decides which writer wins.
func (r *salaryRecordRepositoryImpl) CreateIfAbsent(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, bool, error) {
	q := GetQuerier(ctx, r.db)

	data, err := json.Marshal(record.Data)
	if err != nil {
		return payroll.SalaryRecord{}, false, fmt.Errorf("failed to encode salary data: %w", err)
	}

	query := `
		INSERT INTO salary_records (id, employee_id, month, year, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT uk_salary_record_month DO NOTHING
		RETURNING ` + salaryRecordColumns

	stored, err := scanSalaryRecord(q.QueryRow(ctx, query, record.ID, record.EmployeeID, record.Month, record.Year, data))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return payroll.SalaryRecord{}, false, fmt.Errorf("failed to create salary record: %w", err)
	}

	existing, err := r.GetByEmployeePeriod(ctx, record.EmployeeID, record.Month, record.Year)
	if err != nil {
		return payroll.SalaryRecord{}, false, err
	}
	return existing, false, nil
}

// Approve implements payroll.SalaryRecordRepository.
func (r *salaryRecordRepositoryImpl) Approve(ctx context.Context, employeeID string, month, year int, approvedBy string) (payroll.SalaryRecord, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salary_records
		SET is_approved = TRUE, approved_at = NOW(), approved_by = $4, updated_at = NOW()
		WHERE employee_id = $1 AND month = $2 AND year = $3 AND is_approved = FALSE
		RETURNING ` + salaryRecordColumns

	rec, err := scanSalaryRecord(q.QueryRow(ctx, query, employeeID, month, year, approvedBy))
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return payroll.SalaryRecord{}, false, fmt.Errorf("failed to approve salary record: %w", err)
	}

	// Either already approved or missing.
	existing, err := r.GetByEmployeePeriod(ctx, employeeID, month, year)
	if err != nil {
		return payroll.SalaryRecord{}, false, err
	}
	return existing, false, nil
}

// ListByPeriod implements payroll.SalaryRecordRepository.
func (r *salaryRecordRepositoryImpl) ListByPeriod(ctx context.Context, month, year int) ([]payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + salaryRecordColumns + `
		FROM salary_records
		WHERE month = $1 AND year = $2
		ORDER BY data->>'employee_name', employee_id
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary records: %w", err)
	}
	defer rows.Close()

	var records []payroll.SalaryRecord
	for rows.Next() {
		rec, err := scanSalaryRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating salary records: %w", err)
	}

	return records, nil
}
