package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/google/uuid"
)

type summaryRepository struct {
	store *Store
}

func NewSummaryRepository(store *Store) attendance.SummaryRepository {
	return &summaryRepository{store: store}
}

func (r *summaryRepository) ListByPeriod(ctx context.Context, companyID string, month, year int) ([]attendance.AttendanceSummary, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	saved := r.store.data.summaries[keyOf(companyID, month, year)]
	out := append([]attendance.AttendanceSummary(nil), saved...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out, nil
}

func (r *summaryRepository) CountByPeriod(ctx context.Context, companyID string, month, year int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return len(r.store.data.summaries[keyOf(companyID, month, year)]), nil
}

func (r *summaryRepository) ReplaceForPeriod(ctx context.Context, companyID string, month, year int, records []attendance.AttendanceSummary) error {
	defer r.store.lockWrite(ctx)()

	now := time.Now().UTC()
	saved := make([]attendance.AttendanceSummary, 0, len(records))
	for _, rec := range records {
		rec.ID = uuid.NewString()
		rec.CompanyID = companyID
		rec.Month = month
		rec.Year = year
		rec.CreatedAt = now
		rec.UpdatedAt = now
		saved = append(saved, rec)
	}
	r.store.data.summaries[keyOf(companyID, month, year)] = saved
	return nil
}

func (r *summaryRepository) DeleteByPeriod(ctx context.Context, companyID string, month, year int) (int64, error) {
	defer r.store.lockWrite(ctx)()

	key := keyOf(companyID, month, year)
	n := int64(len(r.store.data.summaries[key]))
	delete(r.store.data.summaries, key)
	return n, nil
}

type baseSource struct {
	store *Store
}

// NewBaseSource returns the seeded base figures of a period. Active employees
// without seeded figures get an all-zero record.
func NewBaseSource(store *Store) attendance.BaseSource {
	return &baseSource{store: store}
}

func (b *baseSource) ComputeBase(ctx context.Context, companyID string, month, year int) ([]attendance.BaseRecord, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	seeded := make(map[string]attendance.BaseRecord)
	for _, rec := range b.store.data.base[keyOf(companyID, month, year)] {
		seeded[rec.EmployeeID] = rec
	}

	profiles := b.store.data.profiles[companyID]
	out := make([]attendance.BaseRecord, 0, len(profiles))
	for _, p := range profiles {
		rec, ok := seeded[p.EmployeeID]
		if !ok {
			rec = attendance.BaseRecord{EmployeeID: p.EmployeeID}
		}
		out = append(out, rec)
	}
	return out, nil
}

type shiftDirectory struct {
	store *Store
}

func NewShiftDirectory(store *Store) attendance.ShiftDirectory {
	return &shiftDirectory{store: store}
}

func (d *shiftDirectory) ListActiveProfiles(ctx context.Context, companyID string) ([]attendance.ShiftProfile, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	out := append([]attendance.ShiftProfile(nil), d.store.data.profiles[companyID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out, nil
}

func (d *shiftDirectory) GetProfile(ctx context.Context, companyID string, employeeID string) (attendance.ShiftProfile, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	for _, p := range d.store.data.profiles[companyID] {
		if p.EmployeeID == employeeID {
			return p, nil
		}
	}
	return attendance.ShiftProfile{}, attendance.ErrShiftProfileNotFound
}
