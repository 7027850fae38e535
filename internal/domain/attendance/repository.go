package attendance

import "context"

// SummaryRepository stores finalized attendance summaries.
// All methods include companyID parameter to prevent cross-company data access attacks.
type SummaryRepository interface {
	// ListByPeriod returns the saved summaries of a period ordered by employee name
	ListByPeriod(ctx context.Context, companyID string, month, year int) ([]AttendanceSummary, error)

	// CountByPeriod returns the number of saved summaries of a period
	CountByPeriod(ctx context.Context, companyID string, month, year int) (int, error)

	// ReplaceForPeriod deletes the saved set of the period and inserts records.
	// Callers run it inside a transaction.
	ReplaceForPeriod(ctx context.Context, companyID string, month, year int, records []AttendanceSummary) error

	// DeleteByPeriod removes every summary of the period and reports how many were deleted
	DeleteByPeriod(ctx context.Context, companyID string, month, year int) (int64, error)
}

// BaseSource computes the system-calculated attendance quantities of a period
// from clock-in records, leave and holidays.
type BaseSource interface {
	ComputeBase(ctx context.Context, companyID string, month, year int) ([]BaseRecord, error)
}

// ShiftDirectory supplies standard daily hours and overtime eligibility per employee.
type ShiftDirectory interface {
	ListActiveProfiles(ctx context.Context, companyID string) ([]ShiftProfile, error)
	GetProfile(ctx context.Context, companyID string, employeeID string) (ShiftProfile, error)
}
