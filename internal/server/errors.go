package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	adjustmentdomain "github.com/smallbiznis/payroll/internal/adjustment/domain"
	auditdomain "github.com/smallbiznis/payroll/internal/audit/domain"
	consolidationdomain "github.com/smallbiznis/payroll/internal/consolidation/domain"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	employeedomain "github.com/smallbiznis/payroll/internal/employee/domain"
	"github.com/smallbiznis/payroll/internal/export"
	lifecycledomain "github.com/smallbiznis/payroll/internal/lifecycle/domain"
	"github.com/smallbiznis/payroll/internal/lock"
	"github.com/smallbiznis/payroll/internal/observability/metrics"
	payslipdomain "github.com/smallbiznis/payroll/internal/payslip/domain"
	presetdomain "github.com/smallbiznis/payroll/internal/preset/domain"
	"github.com/smallbiznis/payroll/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type      string            `json:"type"`
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable,omitempty"`
	IDs       []string          `json:"ids,omitempty"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// validationErrors are reported as 400 with the sentinel text as code.
var validationErrors = []error{
	ErrInvalidRequest,
	pagination.ErrInvalidPageToken,
	earningdomain.ErrInvalidPayPeriod,
	earningdomain.ErrInvalidKind,
	earningdomain.ErrInvalidWorkItem,
	earningdomain.ErrInvalidEmployee,
	earningdomain.ErrInvalidEmployer,
	earningdomain.ErrInvalidItemDate,
	earningdomain.ErrInvalidAmount,
	earningdomain.ErrInvalidOBBreakdown,
	earningdomain.ErrInvalidStatus,
	earningdomain.ErrInvalidPageToken,
	adjustmentdomain.ErrDuplicateAdjustment,
	adjustmentdomain.ErrInvalidReason,
	adjustmentdomain.ErrInvalidAmount,
	adjustmentdomain.ErrInvalidActor,
	payslipdomain.ErrInvalidTaxPercentage,
	payslipdomain.ErrInvalidVacationRate,
	payslipdomain.ErrInvalidStatus,
	payslipdomain.ErrInvalidPageToken,
	presetdomain.ErrInvalidPresetName,
	presetdomain.ErrInvalidTaxPercentage,
	presetdomain.ErrInvalidEmployer,
	employeedomain.ErrInvalidEmployee,
	lifecycledomain.ErrEmptySelection,
	export.ErrUnsupportedFormat,
	auditdomain.ErrInvalidEmployer,
	auditdomain.ErrInvalidPageToken,
	auditdomain.ErrInvalidAction,
}

var notFoundErrors = []error{
	ErrNotFound,
	earningdomain.ErrRecordNotFound,
	adjustmentdomain.ErrAdjustmentNotFound,
	payslipdomain.ErrPayslipNotFound,
	presetdomain.ErrPresetNotFound,
	employeedomain.ErrNotFound,
	gorm.ErrRecordNotFound,
}

// conflictErrors reject a request whose precondition does not hold. The
// sentinel text is the stable error type.
var conflictErrors = []error{
	earningdomain.ErrWorkItemConflict,
	lifecycledomain.ErrMixedEmployeeSelection,
	lifecycledomain.ErrMixedEmployerSelection,
	lifecycledomain.ErrMixedPeriodSelection,
	lifecycledomain.ErrNonHomogeneousSelection,
	lifecycledomain.ErrInvalidTransition,
	lifecycledomain.ErrPartialPayslipSelection,
	consolidationdomain.ErrEmptyPeriod,
	adjustmentdomain.ErrRecordNotEditable,
	adjustmentdomain.ErrAdjustmentLocked,
	presetdomain.ErrPresetNameTaken,
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if sentinel := matchSentinel(err, validationErrors); sentinel != nil {
		code := sentinel.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	if sentinel := matchSentinel(err, notFoundErrors); sentinel != nil {
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: messageFor(sentinel),
			IDs:     selectionIDs(err),
		}
	}

	if sentinel := matchSentinel(err, conflictErrors); sentinel != nil {
		return http.StatusConflict, errorPayload{
			Type:    sentinel.Error(),
			Message: messageFor(sentinel),
			IDs:     selectionIDs(err),
		}
	}

	switch {
	case errors.Is(err, lifecycledomain.ErrConcurrentModification),
		errors.Is(err, lock.ErrLockHeld):
		return http.StatusConflict, errorPayload{
			Type:      lifecycledomain.ErrConcurrentModification.Error(),
			Message:   "concurrent modification, retry the request",
			Retryable: true,
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isDependencyError(err):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog labels request log lines without leaking messages.
func classifyErrorForLog(err error) string {
	status, payload := mapError(err)
	switch status {
	case http.StatusBadRequest:
		return "validation"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return payload.Type
	case http.StatusServiceUnavailable:
		return "dependency"
	default:
		return "internal"
	}
}

func matchSentinel(err error, sentinels []error) error {
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}

func isDependencyError(err error) bool {
	if errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch metrics.ClassifyInfraReason(err) {
	case metrics.ReasonDBLockTimeout, metrics.ReasonSerializationFailure:
		return true
	default:
		return false
	}
}

func selectionIDs(err error) []string {
	var selErr *lifecycledomain.SelectionError
	if !errors.As(err, &selErr) || len(selErr.IDs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(selErr.IDs))
	for _, id := range selErr.IDs {
		ids = append(ids, id.String())
	}
	return ids
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func messageFor(sentinel error) string {
	return strings.ReplaceAll(sentinel.Error(), "_", " ")
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
