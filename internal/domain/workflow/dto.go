package workflow

import (
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/readiness"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
)

type OpenRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *OpenRequest) Validate() error {
	if errs := validator.PeriodErrors(r.Month, r.Year); len(errs) > 0 {
		return errs
	}
	return nil
}

type StateRequest struct {
	State WorkflowState `json:"state"`
}

type RecalculateRequest struct {
	State     WorkflowState                `json:"state"`
	Record    attendance.AttendanceSummary `json:"record"`
	Overrides attendance.RawOverrides      `json:"overrides"`
}

type SaveAttendanceRequest struct {
	State   WorkflowState                  `json:"state"`
	Records []attendance.AttendanceSummary `json:"records"`
}

type ProcessPayrollRequest struct {
	State       WorkflowState       `json:"state"`
	ProcessType payroll.ProcessType `json:"process_type"`
	EmployeeIDs []string            `json:"employee_ids,omitempty"`
}

type CleanRequest struct {
	State   WorkflowState `json:"state"`
	Confirm bool          `json:"confirm"`
}

type ValidateResponse struct {
	State  WorkflowState    `json:"state"`
	Report readiness.Report `json:"report"`
}

type AttendanceResponse struct {
	State   WorkflowState                  `json:"state"`
	Records []attendance.AttendanceSummary `json:"records"`
}

type RecalculateResponse struct {
	State      WorkflowState         `json:"state"`
	Derivation attendance.Derivation `json:"derivation"`
}

type PayrollResponse struct {
	State WorkflowState          `json:"state"`
	Run   *payroll.ProcessingRun `json:"run,omitempty"`
}

type CleanResponse struct {
	State  WorkflowState       `json:"state"`
	Result payroll.CleanResult `json:"result"`
}

// StageEvent is published to subscribers of a period whenever its stages change.
type StageEvent struct {
	Period      PeriodKey    `json:"period"`
	Stages      []StageState `json:"stages"`
	InFlight    bool         `json:"in_flight"`
	LastOutcome *Outcome     `json:"last_outcome,omitempty"`
}
