package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/google/uuid"
)

type periodRepository struct {
	store *Store
}

func NewPeriodRepository(store *Store) payroll.PeriodRepository {
	return &periodRepository{store: store}
}

func (r *periodRepository) GetByPeriod(ctx context.Context, companyID string, month, year int) (payroll.PayrollPeriod, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.data.periods[keyOf(companyID, month, year)]
	if !ok {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

func (r *periodRepository) Create(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	defer r.store.lockWrite(ctx)()

	key := keyOf(period.CompanyID, period.Month, period.Year)
	if _, ok := r.store.data.periods[key]; ok {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodAlreadyExists
	}

	now := time.Now().UTC()
	period.ID = uuid.NewString()
	if period.Status == "" {
		period.Status = payroll.PeriodStatusDraft
	}
	period.CreatedAt = now
	period.UpdatedAt = now
	r.store.data.periods[key] = period
	return period, nil
}

func (r *periodRepository) GetOrCreate(ctx context.Context, companyID string, month, year int) (payroll.PayrollPeriod, error) {
	defer r.store.lockWrite(ctx)()

	key := keyOf(companyID, month, year)
	if p, ok := r.store.data.periods[key]; ok {
		return p, nil
	}

	now := time.Now().UTC()
	p := payroll.PayrollPeriod{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Month:     month,
		Year:      year,
		Status:    payroll.PeriodStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.store.data.periods[key] = p
	return p, nil
}

func (r *periodRepository) TransitionStatus(ctx context.Context, companyID string, month, year int, from, to payroll.PeriodStatus) error {
	defer r.store.lockWrite(ctx)()

	key := keyOf(companyID, month, year)
	p, ok := r.store.data.periods[key]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	if p.Status != from {
		return payroll.ErrRunConflict
	}

	now := time.Now().UTC()
	p.Status = to
	p.UpdatedAt = now
	if to == payroll.PeriodStatusCompleted {
		p.CompletedAt = &now
	}
	r.store.data.periods[key] = p
	return nil
}

func (r *periodRepository) Delete(ctx context.Context, companyID string, month, year int) (int64, error) {
	defer r.store.lockWrite(ctx)()

	key := keyOf(companyID, month, year)
	if _, ok := r.store.data.periods[key]; !ok {
		return 0, nil
	}
	delete(r.store.data.periods, key)
	return 1, nil
}
