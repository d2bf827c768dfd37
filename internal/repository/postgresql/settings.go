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

type settingsRepositoryImpl struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) payroll.SettingsRepository {
	return &settingsRepositoryImpl{db: db}
}

// GetSettings implements payroll.SettingsRepository.
func (r *settingsRepositoryImpl) GetSettings(ctx context.Context) (payroll.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, default_leave_quota, salary_components, updated_at
		FROM payroll_settings
		WHERE singleton
	`

	var (
		s          payroll.Settings
		components []byte
	)
	err := q.QueryRow(ctx, query).Scan(&s.ID, &s.DefaultLeaveQuota, &components, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Settings{}, payroll.ErrSettingsNotFound
		}
		return payroll.Settings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}
	if err := json.Unmarshal(components, &s.SalaryComponents); err != nil {
		return payroll.Settings{}, fmt.Errorf("%w: %v", payroll.ErrInvalidSalaryComponents, err)
	}

	return s, nil
}

// UpsertSettings implements payroll.SettingsRepository.
func (r *settingsRepositoryImpl) UpsertSettings(ctx context.Context, settings payroll.Settings) (payroll.Settings, error) {
	q := GetQuerier(ctx, r.db)

	components, err := json.Marshal(settings.SalaryComponents)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("failed to encode salary components: %w", err)
	}

	query := `
		INSERT INTO payroll_settings (default_leave_quota, salary_components)
		VALUES ($1, $2)
		ON CONFLICT (singleton) DO UPDATE SET
			default_leave_quota = EXCLUDED.default_leave_quota,
			salary_components = EXCLUDED.salary_components,
			updated_at = NOW()
		RETURNING id, default_leave_quota, salary_components, updated_at
	`

	var (
		s      payroll.Settings
		stored []byte
	)
	err = q.QueryRow(ctx, query, settings.DefaultLeaveQuota, components).Scan(&s.ID, &s.DefaultLeaveQuota, &stored, &s.UpdatedAt)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("failed to upsert payroll settings: %w", err)
	}
	if err := json.Unmarshal(stored, &s.SalaryComponents); err != nil {
		return payroll.Settings{}, fmt.Errorf("%w: %v", payroll.ErrInvalidSalaryComponents, err)
	}

	return s, nil
}
