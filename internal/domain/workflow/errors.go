package workflow

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/readiness"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
)

// ErrorKind is what callers branch on to pick a remedy.
type ErrorKind string

const (
	KindInvariantViolated      ErrorKind = "VALIDATION_INVARIANT_VIOLATED"
	KindPeriodNotFound         ErrorKind = "PERIOD_NOT_FOUND"
	KindPeriodNotProcessable   ErrorKind = "PERIOD_NOT_PROCESSABLE"
	KindPeriodAlreadyCompleted ErrorKind = "PERIOD_ALREADY_COMPLETED"
	KindPeriodAlreadyExists    ErrorKind = "PERIOD_ALREADY_EXISTS"
	KindUpstreamComputation    ErrorKind = "UPSTREAM_COMPUTATION_ERROR"
	KindReadinessUnavailable   ErrorKind = "READINESS_UNAVAILABLE"
	KindInvalidInput           ErrorKind = "INVALID_INPUT"
	KindStageUnavailable       ErrorKind = "STAGE_UNAVAILABLE"
	KindUnauthorized           ErrorKind = "UNAUTHORIZED"
	KindInternal               ErrorKind = "INTERNAL"
)

var (
	ErrStageUnavailable = errors.New("stage is not available")
	ErrNoPeriodSelected = errors.New("no period selected")
)

// StageError reports an operation attempted before its stage was unlocked.
type StageError struct {
	Stage    Stage
	Required Stage
	Status   StageStatus
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s is unavailable: %s is %s", e.Stage, e.Required, e.Status)
}

func (e *StageError) Is(target error) bool {
	return target == ErrStageUnavailable
}

// KindOf classifies err. Nil maps to the empty kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, attendance.ErrInvariantViolated):
		return KindInvariantViolated
	case errors.Is(err, payroll.ErrPeriodAlreadyCompleted):
		return KindPeriodAlreadyCompleted
	case errors.Is(err, payroll.ErrPeriodNotProcessable):
		return KindPeriodNotProcessable
	case errors.Is(err, payroll.ErrPeriodNotFound):
		return KindPeriodNotFound
	case errors.Is(err, payroll.ErrPeriodAlreadyExists):
		return KindPeriodAlreadyExists
	case errors.Is(err, payroll.ErrUpstreamComputation):
		return KindUpstreamComputation
	case errors.Is(err, readiness.ErrReadinessUnavailable):
		return KindReadinessUnavailable
	case errors.Is(err, ErrStageUnavailable):
		return KindStageUnavailable
	case errors.Is(err, jwt.ErrMissingCompany):
		return KindUnauthorized
	case errors.As(err, &verrs),
		errors.Is(err, ErrNoPeriodSelected),
		errors.Is(err, attendance.ErrDuplicateEmployee),
		errors.Is(err, attendance.ErrShiftProfileNotFound),
		errors.Is(err, payroll.ErrCleanNotConfirmed),
		errors.Is(err, payroll.ErrInvalidProcessType):
		return KindInvalidInput
	default:
		return KindInternal
	}
}

// OutcomeOf builds the outcome record of an operation.
func OutcomeOf(operation string, err error) *Outcome {
	if err == nil {
		return &Outcome{Operation: operation, Success: true}
	}

	out := &Outcome{
		Operation: operation,
		Kind:      KindOf(err),
		Message:   err.Error(),
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out.Details = verrs.ToMap()
	}
	var violations attendance.InvariantViolations
	if errors.As(err, &violations) {
		out.Details = make(map[string]string, len(violations))
		for _, v := range violations {
			out.Details[v.EmployeeID] = v.Error()
		}
	}
	return out
}
