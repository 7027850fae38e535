package payroll

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
)

// Calculator computes pay for a set of saved attendance summaries. Failures
// that concern a single employee are reported in CalculationResult.Errors; a
// returned error aborts the whole run.
type Calculator interface {
	Calculate(ctx context.Context, in CalculationInput) (CalculationResult, error)
}

// LifecycleService owns the persisted state of a payroll period.
type LifecycleService interface {
	// ProcessAttendance returns the saved summary set, or freshly computed base
	// summaries when nothing was saved yet. It never writes.
	ProcessAttendance(ctx context.Context, month, year int) (attendance.ProcessResult, error)

	// SaveAttendanceSummary persists the full summary set atomically
	SaveAttendanceSummary(ctx context.Context, req attendance.SaveSummaryRequest) (SaveSummaryResult, error)

	ProcessPayroll(ctx context.Context, req ProcessPayrollRequest) (ProcessingRun, error)

	// CleanPeriod returns the period to its initial state. Cleaning twice is a no-op.
	CleanPeriod(ctx context.Context, req CleanPeriodRequest) (CleanResult, error)

	// CountSavedSummaries reports how many summaries the period has saved
	CountSavedSummaries(ctx context.Context, month, year int) (int, error)

	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (PayrollPeriod, error)
	GetPeriod(ctx context.Context, month, year int) (PeriodResponse, error)
	ListRuns(ctx context.Context, month, year int) ([]ProcessingRun, error)
}
