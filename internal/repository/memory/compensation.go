package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
)

type compensationRepository struct {
	store *Store
}

func NewCompensationRepository(store *Store) payroll.CompensationRepository {
	return &compensationRepository{store: store}
}

func (r *compensationRepository) GetSettings(ctx context.Context, companyID string) (payroll.PayrollSettings, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.data.settings[companyID]
	if !ok {
		return payroll.PayrollSettings{}, payroll.ErrPayrollSettingsNotFound
	}
	return s, nil
}

// ListCompensation ignores asOf; seeded components have no validity window.
func (r *compensationRepository) ListCompensation(ctx context.Context, companyID string, employeeIDs []string, asOf time.Time) (map[string]payroll.Compensation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	all := r.store.data.compensation[companyID]
	out := make(map[string]payroll.Compensation, len(employeeIDs))
	for _, id := range employeeIDs {
		if c, ok := all[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}
