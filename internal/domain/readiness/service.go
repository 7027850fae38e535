package readiness

import "context"

// Checker is the prerequisite-check collaborator. It may return statuses in
// any letter case; the aggregator normalizes them.
type Checker interface {
	Validate(ctx context.Context, companyID string, month, year int) (Report, error)
}

// Service reduces a checker report to a verdict the workflow can gate on.
// Checker failures never surface as errors; they produce an ERROR report.
type Service interface {
	Evaluate(ctx context.Context, month, year int) (Report, error)
}
