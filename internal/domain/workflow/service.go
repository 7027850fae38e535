package workflow

import "context"

// Service drives a closing session through its four stages. Every operation
// returns the updated state, including when it fails; the error carries the kind.
type Service interface {
	Open(ctx context.Context, req OpenRequest) (WorkflowState, error)
	Validate(ctx context.Context, req StateRequest) (ValidateResponse, error)
	ProcessAttendance(ctx context.Context, req StateRequest) (AttendanceResponse, error)
	Recalculate(ctx context.Context, req RecalculateRequest) (RecalculateResponse, error)
	SaveAttendance(ctx context.Context, req SaveAttendanceRequest) (AttendanceResponse, error)
	ProcessPayroll(ctx context.Context, req ProcessPayrollRequest) (PayrollResponse, error)
	Clean(ctx context.Context, req CleanRequest) (CleanResponse, error)
}

// Publisher delivers stage events to the subscribers of a company period.
type Publisher interface {
	Publish(companyID string, event StageEvent)
}
