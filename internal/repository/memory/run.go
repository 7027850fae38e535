package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/google/uuid"
)

type runRepository struct {
	store *Store
}

func NewRunRepository(store *Store) payroll.RunRepository {
	return &runRepository{store: store}
}

func (r *runRepository) Create(ctx context.Context, run payroll.ProcessingRun) (payroll.ProcessingRun, error) {
	defer r.store.lockWrite(ctx)()

	key := keyOf(run.CompanyID, run.Month, run.Year)
	existing := r.store.data.runs[key]
	for _, other := range existing {
		if other.Status == payroll.RunStatusInProgress {
			return payroll.ProcessingRun{}, payroll.ErrRunConflict
		}
	}

	run.ID = uuid.NewString()
	run.Status = payroll.RunStatusInProgress
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	runs := make([]payroll.ProcessingRun, 0, len(existing)+1)
	runs = append(runs, existing...)
	r.store.data.runs[key] = append(runs, run)
	return run, nil
}

func (r *runRepository) Finish(ctx context.Context, run payroll.ProcessingRun) error {
	defer r.store.lockWrite(ctx)()

	key := keyOf(run.CompanyID, run.Month, run.Year)
	existing := r.store.data.runs[key]
	for i, other := range existing {
		if other.ID != run.ID {
			continue
		}
		if other.Status != payroll.RunStatusInProgress {
			return payroll.ErrRunConflict
		}
		runs := append([]payroll.ProcessingRun(nil), existing...)
		runs[i] = run
		r.store.data.runs[key] = runs
		return nil
	}
	return payroll.ErrRunNotFound
}

func (r *runRepository) GetLatest(ctx context.Context, companyID string, month, year int) (payroll.ProcessingRun, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	runs := r.store.data.runs[keyOf(companyID, month, year)]
	if len(runs) == 0 {
		return payroll.ProcessingRun{}, payroll.ErrRunNotFound
	}
	return runs[len(runs)-1], nil
}

// ListByPeriod returns the runs of a period, newest first.
func (r *runRepository) ListByPeriod(ctx context.Context, companyID string, month, year int) ([]payroll.ProcessingRun, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	runs := r.store.data.runs[keyOf(companyID, month, year)]
	out := make([]payroll.ProcessingRun, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		out = append(out, runs[i])
	}
	return out, nil
}

func (r *runRepository) DeleteByPeriod(ctx context.Context, companyID string, month, year int) (int64, error) {
	defer r.store.lockWrite(ctx)()

	key := keyOf(companyID, month, year)
	n := int64(len(r.store.data.runs[key]))
	delete(r.store.data.runs, key)
	return n, nil
}
