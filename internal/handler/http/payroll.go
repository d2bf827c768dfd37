package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PayrollHandler interface {
	// Salaries
	GetSalary(w http.ResponseWriter, r *http.Request)
	ApproveSalary(w http.ResponseWriter, r *http.Request)
	ApproveAll(w http.ResponseWriter, r *http.Request)
	GenerateSalaries(w http.ResponseWriter, r *http.Request)
	ListSalaries(w http.ResponseWriter, r *http.Request)
	ExportSalaries(w http.ResponseWriter, r *http.Request)

	// Ledger
	GetLedger(w http.ResponseWriter, r *http.Request)
	BackfillLedger(w http.ResponseWriter, r *http.Request)

	// Settings
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// periodFromQuery reads month and year query parameters. Missing or malformed
// values come back as zero and are rejected by request validation.
func periodFromQuery(r *http.Request) (int, int) {
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	return month, year
}

func decodePeriod(r *http.Request) (payroll.PeriodRequest, error) {
	var req payroll.PeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return payroll.PeriodRequest{}, err
	}
	return req, nil
}

// ========== SALARIES ==========

func (h *payrollHandlerImpl) GetSalary(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}
	month, year := periodFromQuery(r)

	result, err := h.payrollService.ComputeOrFetchSalary(r.Context(), employeeID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ApproveSalary(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	req, err := decodePeriod(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ApproveSalary(r.Context(), employeeID, req.Month, req.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary approved", payroll.NewSalaryRecordResponse(result))
}

func (h *payrollHandlerImpl) ApproveAll(w http.ResponseWriter, r *http.Request) {
	req, err := decodePeriod(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	results, err := h.payrollService.ApproveAllForMonth(r.Context(), req.Month, req.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeBulk(w, "Salaries approved", req.Period(), results)
}

func (h *payrollHandlerImpl) GenerateSalaries(w http.ResponseWriter, r *http.Request) {
	req, err := decodePeriod(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	results, err := h.payrollService.GenerateForMonth(r.Context(), req.Month, req.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeBulk(w, "Salaries generated", req.Period(), results)
}

func writeBulk(w http.ResponseWriter, message string, period payroll.Period, results []payroll.BulkResult) {
	summary := payroll.SummarizeBulk(period, results)
	if summary.Counts[string(payroll.BulkStatusFailed)] > 0 {
		response.MultiStatus(w, "Some employees could not be processed", summary)
		return
	}
	response.SuccessWithMessage(w, message, summary)
}

func (h *payrollHandlerImpl) ListSalaries(w http.ResponseWriter, r *http.Request) {
	month, year := periodFromQuery(r)

	result, err := h.payrollService.ListSalaries(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ExportSalaries(w http.ResponseWriter, r *http.Request) {
	month, year := periodFromQuery(r)

	// Buffer the workbook so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.payrollService.ExportSalaries(r.Context(), month, year, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("salary-register-%s.xlsx", payroll.NewPeriod(month, year))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// ========== LEDGER ==========

func (h *payrollHandlerImpl) GetLedger(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.payrollService.GetLedger(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) BackfillLedger(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	req, err := decodePeriod(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.BackfillLedger(r.Context(), employeeID, req.Month, req.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave ledger backfilled", result)
}

// ========== SETTINGS ==========

func (h *payrollHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.GetSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.UpdateSettings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
