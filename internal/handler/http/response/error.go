package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/employee"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/user"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var gap *payroll.LedgerGapError
	if errors.As(err, &gap) {
		ConflictWithDetails(w, "LEDGER_GAP", "Leave ledger must be computed in order", map[string]string{
			"requested": gap.Requested.String(),
			"expected":  gap.Expected.String(),
		})
		return
	}

	switch {
	// Access errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrManagerAccessRequired), errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrLedgerEntryExists):
		Conflict(w, "Leave ledger entry already exists for this month")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrSalaryRecordNotFound):
		NotFound(w, "Salary record not found")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrFuturePeriod):
		BadRequest(w, "Salary cannot be computed for a future month", nil)
	case errors.Is(err, payroll.ErrBeforeLedgerStart):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrApprovalWindow):
		BadRequest(w, "Only completed months can be approved", nil)
	case errors.Is(err, payroll.ErrBulkApprovalWindow):
		BadRequest(w, "Bulk approval is only allowed for the previous month", nil)
	case errors.Is(err, payroll.ErrLockNotObtained):
		Conflict(w, "Salary is being computed by another request, retry shortly")
	case errors.Is(err, payroll.ErrInvalidSalaryComponents):
		InternalServerError(w, "Stored salary components are invalid")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
