package payroll

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/employee"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/validator"
)

// ========== REQUEST DTOs ==========

type SalaryPeriodRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	Month      int    `json:"month" validate:"required,min=1,max=12"`
	Year       int    `json:"year" validate:"required,gte=2000,lte=9999"`
}

func (r *SalaryPeriodRequest) Validate() error {
	return validator.Struct(r)
}

func (r SalaryPeriodRequest) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

type PeriodRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,gte=2000,lte=9999"`
}

func (r *PeriodRequest) Validate() error {
	return validator.Struct(r)
}

func (r PeriodRequest) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

type SalaryComponentRequest struct {
	Title      string          `json:"title" validate:"required,max=50"`
	Percentage decimal.Decimal `json:"percentage"`
}

type UpdateSettingsRequest struct {
	DefaultLeaveQuota *float64                 `json:"default_leave_quota,omitempty" validate:"omitempty,gte=0,lte=31"`
	SalaryComponents  []SalaryComponentRequest `json:"salary_components,omitempty" validate:"omitempty,min=1,dive"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		tagErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, tagErrs...)
	}

	if r.SalaryComponents != nil {
		total := decimal.Zero
		seen := make(map[string]bool, len(r.SalaryComponents))
		for _, c := range r.SalaryComponents {
			if c.Percentage.IsNegative() {
				errs = append(errs, validator.ValidationError{Field: "salary_components", Message: "percentages must be non-negative"})
				break
			}
			key := strings.ToLower(strings.TrimSpace(c.Title))
			if seen[key] {
				errs = append(errs, validator.ValidationError{Field: "salary_components", Message: "titles must be unique"})
				break
			}
			seen[key] = true
			total = total.Add(c.Percentage)
		}
		if !total.Equal(decimal.NewFromInt(100)) {
			errs = append(errs, validator.ValidationError{Field: "salary_components.percentage", Message: "must sum to 100"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== RESPONSE DTOs ==========

type SettingsResponse struct {
	ID                string            `json:"id,omitempty"`
	DefaultLeaveQuota float64           `json:"default_leave_quota"`
	SalaryComponents  []SalaryComponent `json:"salary_components"`
	IsDefault         bool              `json:"is_default"`
	UpdatedAt         *string           `json:"updated_at,omitempty"`
}

type SalaryRecordResponse struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	Data       SalaryBreakdown `json:"data"`
	IsApproved bool            `json:"is_approved"`
	ApprovedAt *string         `json:"approved_at,omitempty"`
	ApprovedBy *string         `json:"approved_by,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

func NewSalaryRecordResponse(r SalaryRecord) SalaryRecordResponse {
	resp := SalaryRecordResponse{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Month:      r.Month,
		Year:       r.Year,
		Data:       r.Data,
		IsApproved: r.IsApproved,
		ApprovedBy: r.ApprovedBy,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.ApprovedAt != nil {
		approvedAt := r.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &approvedAt
	}
	return resp
}

type SalarySummary struct {
	TotalEmployees int             `json:"total_employees"`
	ApprovedCount  int             `json:"approved_count"`
	PendingCount   int             `json:"pending_count"`
	TotalBasic     decimal.Decimal `json:"total_basic_salary"`
	TotalDeduction decimal.Decimal `json:"total_deduction"`
	TotalFinal     decimal.Decimal `json:"total_final_salary"`
}

type ListSalaryResponse struct {
	Month   int                    `json:"month"`
	Year    int                    `json:"year"`
	Records []SalaryRecordResponse `json:"records"`
	Summary SalarySummary          `json:"summary"`
}

// BulkResult is the per-employee outcome of a bulk run. Error is set only
// when Status is failed.
type BulkResult struct {
	EmployeeID   string           `json:"employee_id"`
	EmployeeName string           `json:"employee_name"`
	Status       BulkStatus       `json:"status"`
	FinalSalary  *decimal.Decimal `json:"final_salary,omitempty"`
	Error        string           `json:"error,omitempty"`
}

type BulkSummary struct {
	Month   int            `json:"month"`
	Year    int            `json:"year"`
	Total   int            `json:"total"`
	Counts  map[string]int `json:"counts"`
	Results []BulkResult   `json:"results"`
}

func SummarizeBulk(period Period, results []BulkResult) BulkSummary {
	counts := make(map[string]int)
	for _, r := range results {
		counts[string(r.Status)]++
	}
	return BulkSummary{
		Month:   period.Month,
		Year:    period.Year,
		Total:   len(results),
		Counts:  counts,
		Results: results,
	}
}

type LedgerResponse struct {
	EmployeeID        string                 `json:"employee_id"`
	CarryForwardLeave float64                `json:"carry_forward_leave"`
	Start             Period                 `json:"ledger_start"`
	NextExpected      Period                 `json:"next_expected"`
	Entries           []employee.LedgerEntry `json:"entries"`
}

type BackfillMonth struct {
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	LedgerBranch LedgerBranch    `json:"ledger_branch"`
	CarryForward float64         `json:"carry_forward"`
	FinalSalary  decimal.Decimal `json:"final_salary"`
}

type BackfillResponse struct {
	EmployeeID string          `json:"employee_id"`
	Processed  []BackfillMonth `json:"processed"`
}
