// Package memory is a process-local backend for development and tests. Its
// repositories honor the same contracts as the Postgres ones, including
// guarded status transitions and transaction rollback. Transactions run one
// at a time and writes outside a transaction wait for the running one, so
// isolation is serializable.
package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/readiness"
)

type periodKey struct {
	companyID string
	month     int
	year      int
}

func keyOf(companyID string, month, year int) periodKey {
	return periodKey{companyID: companyID, month: month, year: year}
}

type state struct {
	periods      map[periodKey]payroll.PayrollPeriod
	summaries    map[periodKey][]attendance.AttendanceSummary
	runs         map[periodKey][]payroll.ProcessingRun
	profiles     map[string][]attendance.ShiftProfile
	base         map[periodKey][]attendance.BaseRecord
	settings     map[string]payroll.PayrollSettings
	compensation map[string]map[string]payroll.Compensation
	reports      map[periodKey]readiness.Report
}

func newState() state {
	return state{
		periods:      make(map[periodKey]payroll.PayrollPeriod),
		summaries:    make(map[periodKey][]attendance.AttendanceSummary),
		runs:         make(map[periodKey][]payroll.ProcessingRun),
		profiles:     make(map[string][]attendance.ShiftProfile),
		base:         make(map[periodKey][]attendance.BaseRecord),
		settings:     make(map[string]payroll.PayrollSettings),
		compensation: make(map[string]map[string]payroll.Compensation),
		reports:      make(map[periodKey]readiness.Report),
	}
}

// clone copies the mutable maps. Slices are replaced wholesale on every write,
// so sharing them between snapshots is safe.
func (s state) clone() state {
	c := newState()
	for k, v := range s.periods {
		c.periods[k] = v
	}
	for k, v := range s.summaries {
		c.summaries[k] = v
	}
	for k, v := range s.runs {
		c.runs[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.base {
		c.base[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	for k, v := range s.compensation {
		c.compensation[k] = v
	}
	for k, v := range s.reports {
		c.reports[k] = v
	}
	return c
}

// Store holds every collection of the backend.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

type txKey struct{}

// WithinTx implements database.TxManager. Transactions are serialized; a
// failing fn restores every collection to its state before the call.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lockWrite locks the store for a write. Outside a transaction it also waits
// for the running transaction, whose rollback would otherwise discard the
// write.
func (s *Store) lockWrite(ctx context.Context) (unlock func()) {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

// SeedProfiles registers the active employees of a company.
func (s *Store) SeedProfiles(companyID string, profiles ...attendance.ShiftProfile) {
	defer s.lockWrite(context.Background())()
	s.data.profiles[companyID] = append(append([]attendance.ShiftProfile(nil), s.data.profiles[companyID]...), profiles...)
}

// SeedBase sets the base attendance figures of a period.
func (s *Store) SeedBase(companyID string, month, year int, records ...attendance.BaseRecord) {
	defer s.lockWrite(context.Background())()
	s.data.base[keyOf(companyID, month, year)] = append([]attendance.BaseRecord(nil), records...)
}

func (s *Store) SeedSettings(settings payroll.PayrollSettings) {
	defer s.lockWrite(context.Background())()
	s.data.settings[settings.CompanyID] = settings
}

func (s *Store) SeedCompensation(companyID string, comps ...payroll.Compensation) {
	defer s.lockWrite(context.Background())()
	byEmployee := make(map[string]payroll.Compensation, len(comps))
	for k, v := range s.data.compensation[companyID] {
		byEmployee[k] = v
	}
	for _, c := range comps {
		byEmployee[c.EmployeeID] = c
	}
	s.data.compensation[companyID] = byEmployee
}

// SeedReport sets the report returned by the readiness checker for a period.
func (s *Store) SeedReport(companyID string, report readiness.Report) {
	defer s.lockWrite(context.Background())()
	s.data.reports[keyOf(companyID, report.Month, report.Year)] = report
}
