package workflow

import (
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
)

// DeriveStages computes the four stage statuses from the state's readiness
// report, attendance set and latest run. It is pure; stored statuses in
// s.Stages are ignored.
func DeriveStages(s WorkflowState) []StageState {
	setup := setupStatus(s)
	pre := preCheckStatus(s, setup)
	att := attendanceStatus(s, pre)
	pay := payrollStatus(s, att)

	return []StageState{
		{Stage: StageSetup, Name: StageSetup.String(), Status: setup},
		{Stage: StagePreChecks, Name: StagePreChecks.String(), Status: pre},
		{Stage: StageAttendanceProcessing, Name: StageAttendanceProcessing.String(), Status: att},
		{Stage: StagePayrollProcessing, Name: StagePayrollProcessing.String(), Status: pay},
	}
}

func setupStatus(s WorkflowState) StageStatus {
	if s.Period != nil && len(validator.PeriodErrors(s.Period.Month, s.Period.Year)) == 0 {
		return StatusCompleted
	}
	return StatusActive
}

func preCheckStatus(s WorkflowState, setup StageStatus) StageStatus {
	switch {
	case s.Readiness != nil && s.Readiness.ready():
		return StatusCompleted
	case s.Readiness != nil:
		return StatusFailed
	case setup == StatusCompleted:
		return StatusActive
	default:
		return StatusPending
	}
}

func attendanceStatus(s WorkflowState, pre StageStatus) StageStatus {
	switch {
	case pre == StatusFailed:
		return StatusDisabled
	case s.Attendance.Processed:
		return StatusCompleted
	case pre == StatusCompleted:
		return StatusActive
	default:
		return StatusPending
	}
}

func payrollStatus(s WorkflowState, att StageStatus) StageStatus {
	switch {
	case att == StatusDisabled:
		return StatusDisabled
	case s.InFlight:
		return StatusActive
	case s.LatestRun != nil && s.LatestRun.Status.Succeeded():
		return StatusCompleted
	case s.LatestRun != nil && s.LatestRun.Status == payroll.RunStatusFailed:
		return StatusFailed
	case att == StatusCompleted:
		return StatusActive
	default:
		return StatusPending
	}
}

// Gate returns a StageError unless the stage before stage is completed.
func Gate(s WorkflowState, stage Stage) error {
	if stage <= StageSetup {
		return nil
	}
	required := stage - 1
	if status := s.Status(required); status != StatusCompleted {
		return &StageError{Stage: stage, Required: required, Status: status}
	}
	return nil
}
