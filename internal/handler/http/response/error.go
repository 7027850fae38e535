package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/jwt"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	HandleErrorWithData(w, err, nil)
}

// HandleErrorWithData writes the error response of err and attaches data,
// typically the workflow state the failed operation returned.
func HandleErrorWithData(w http.ResponseWriter, err error, data interface{}) {
	status, detail := mapError(err)
	if status == http.StatusInternalServerError {
		slog.Error("unhandled error", "error", err)
	}
	Failure(w, status, detail, data)
}

func mapError(err error) (int, *ErrorDetail) {
	// Token errors come from the middleware and carry no workflow kind
	switch {
	case errors.Is(err, jwt.ErrInvalidToken):
		return http.StatusUnauthorized, &ErrorDetail{Code: "UNAUTHORIZED", Message: "Invalid token"}
	case errors.Is(err, jwt.ErrInsufficientRole):
		return http.StatusForbidden, &ErrorDetail{Code: "FORBIDDEN", Message: "Insufficient role"}
	}

	outcome := workflow.OutcomeOf("", err)
	detail := &ErrorDetail{
		Code:    string(outcome.Kind),
		Message: outcome.Message,
		Details: outcome.Details,
	}

	switch outcome.Kind {
	case workflow.KindInvalidInput:
		if len(outcome.Details) > 0 {
			detail.Code = "VALIDATION_ERROR"
			detail.Message = "Validation failed"
			return http.StatusUnprocessableEntity, detail
		}
		return http.StatusBadRequest, detail
	case workflow.KindInvariantViolated:
		return http.StatusUnprocessableEntity, detail
	case workflow.KindPeriodNotFound:
		return http.StatusNotFound, detail
	case workflow.KindPeriodAlreadyCompleted,
		workflow.KindPeriodNotProcessable,
		workflow.KindPeriodAlreadyExists,
		workflow.KindStageUnavailable:
		return http.StatusConflict, detail
	case workflow.KindUpstreamComputation:
		return http.StatusBadGateway, detail
	case workflow.KindReadinessUnavailable:
		return http.StatusServiceUnavailable, detail
	case workflow.KindUnauthorized:
		return http.StatusUnauthorized, detail
	default:
		return http.StatusInternalServerError, &ErrorDetail{
			Code:    "INTERNAL_SERVER_ERROR",
			Message: "An unexpected error occurred",
		}
	}
}
