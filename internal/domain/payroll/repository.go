package payroll

import (
	"context"
	"time"
)

// PeriodRepository defines data access methods for payroll periods.
// All methods include companyID parameter to prevent cross-company data access attacks.
type PeriodRepository interface {
	// GetByPeriod returns ErrPeriodNotFound when the period was never created or was cleaned
	GetByPeriod(ctx context.Context, companyID string, month, year int) (PayrollPeriod, error)

	// Create returns ErrPeriodAlreadyExists when the period is present
	Create(ctx context.Context, period PayrollPeriod) (PayrollPeriod, error)

	// GetOrCreate returns the period, inserting it as DRAFT when it is missing.
	// Concurrent callers all get the same row; inside a transaction the row
	// stays locked until commit.
	GetOrCreate(ctx context.Context, companyID string, month, year int) (PayrollPeriod, error)

	// TransitionStatus moves the period from one status to another only if it is
	// currently in from; otherwise ErrRunConflict is returned.
	TransitionStatus(ctx context.Context, companyID string, month, year int, from, to PeriodStatus) error

	// Delete removes the period row and reports how many rows were deleted
	Delete(ctx context.Context, companyID string, month, year int) (int64, error)
}

// RunRepository stores processing runs. Runs are never updated after they finish.
type RunRepository interface {
	// Create returns ErrRunConflict when an IN_PROGRESS run already exists for the period
	Create(ctx context.Context, run ProcessingRun) (ProcessingRun, error)

	// Finish records the final status, totals and errors of an IN_PROGRESS run
	Finish(ctx context.Context, run ProcessingRun) error

	// GetLatest returns ErrRunNotFound when the period has no run
	GetLatest(ctx context.Context, companyID string, month, year int) (ProcessingRun, error)

	ListByPeriod(ctx context.Context, companyID string, month, year int) ([]ProcessingRun, error)
	DeleteByPeriod(ctx context.Context, companyID string, month, year int) (int64, error)
}

// CompensationRepository reads the pay configuration used by the default calculator.
type CompensationRepository interface {
	GetSettings(ctx context.Context, companyID string) (PayrollSettings, error)

	// ListCompensation returns base salary and components effective at asOf, keyed by employee id
	ListCompensation(ctx context.Context, companyID string, employeeIDs []string, asOf time.Time) (map[string]Compensation, error)
}
