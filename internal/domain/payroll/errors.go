package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrPeriodNotFound          = errors.New("payroll period not found")
	ErrPeriodAlreadyExists     = errors.New("payroll period already exists")
	ErrPeriodNotProcessable    = errors.New("payroll period is not in a processable status")
	ErrCleanNotConfirmed       = errors.New("clean must be explicitly confirmed")
	ErrRunNotFound             = errors.New("processing run not found")
	ErrInvalidProcessType      = errors.New("invalid process type")
	ErrPayrollSettingsNotFound = errors.New("payroll settings not found")
	ErrEmployeeHasNoBaseSalary = errors.New("employee has no base salary configured")
)

// Conditions that block processing. Each one also matches ErrPeriodNotProcessable.
var (
	ErrPeriodAlreadyCompleted = fmt.Errorf("%w: period already completed", ErrPeriodNotProcessable)
	ErrAttendanceNotSaved     = fmt.Errorf("%w: attendance summary has not been saved", ErrPeriodNotProcessable)
	ErrRunConflict            = fmt.Errorf("%w: another payroll run is in progress", ErrPeriodNotProcessable)
	ErrPeriodLocked           = fmt.Errorf("%w: attendance cannot change while the period is processing or completed", ErrPeriodNotProcessable)
)

// ErrUpstreamComputation is the kind of every failure reported by the payroll calculator.
var ErrUpstreamComputation = errors.New("payroll computation failed")

// UpstreamError carries the calculator's own message unchanged.
type UpstreamError struct {
	Source  string
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamComputation
}
