package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

type SummaryServiceImpl struct {
	engine    *Engine
	directory attendance.ShiftDirectory
	base      attendance.BaseSource
}

func NewSummaryService(directory attendance.ShiftDirectory, base attendance.BaseSource) attendance.SummaryService {
	return &SummaryServiceImpl{
		engine:    NewEngine(),
		directory: directory,
		base:      base,
	}
}

// Recalculate implements attendance.SummaryService.
func (s *SummaryServiceImpl) Recalculate(ctx context.Context, req attendance.RecalculateRequest) (attendance.Derivation, error) {
	if err := req.Validate(); err != nil {
		return attendance.Derivation{}, err
	}

	overrides, err := ParseOverrides(req.Overrides)
	if err != nil {
		return attendance.Derivation{}, err
	}

	shift, err := s.resolveShift(ctx, req.Record)
	if err != nil {
		return attendance.Derivation{}, err
	}

	return s.engine.Derive(DerivationInput{
		EmployeeID: req.Record.EmployeeID,
		Month:      req.Month,
		Year:       req.Year,
		Current:    req.Record.Final,
		Overrides:  overrides,
		Shift:      shift,
	})
}

// Prepare implements attendance.SummaryService.
func (s *SummaryServiceImpl) Prepare(companyID string, month, year int, profile attendance.ShiftProfile, base attendance.BaseRecord) (attendance.AttendanceSummary, error) {
	summary, d, err := s.prepare(companyID, month, year, profile, base)
	if err != nil {
		return attendance.AttendanceSummary{}, err
	}
	if !d.Valid {
		// Upstream figures over the ceiling are shown to the operator, who must
		// correct them before the set can be saved.
		slog.Warn("base attendance exceeds calendar days", "employee_id", profile.EmployeeID, "message", d.Message)
	}
	return summary, nil
}

func (s *SummaryServiceImpl) prepare(companyID string, month, year int, profile attendance.ShiftProfile, base attendance.BaseRecord) (attendance.AttendanceSummary, attendance.Derivation, error) {
	d, err := s.engine.Derive(DerivationInput{
		EmployeeID: profile.EmployeeID,
		Month:      month,
		Year:       year,
		Current:    base.Fields,
		Shift:      profile,
		Full:       true,
	})
	if err != nil {
		return attendance.AttendanceSummary{}, attendance.Derivation{}, err
	}
	return attendance.NewSummary(companyID, month, year, profile, d.Final), d, nil
}

// Finalize implements attendance.SummaryService. The base group and the shift
// profile of every record are rebuilt from the base source and the directory;
// only the final group and the remarks come from the caller. Payable days is
// recomputed from the day counts and any record breaking the ceiling rejects
// the whole set.
func (s *SummaryServiceImpl) Finalize(ctx context.Context, month, year int, records []attendance.AttendanceSummary) ([]attendance.AttendanceSummary, error) {
	req := attendance.SaveSummaryRequest{Month: month, Year: year, Records: records}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if seen[rec.EmployeeID] {
			return nil, fmt.Errorf("%w: %s", attendance.ErrDuplicateEmployee, rec.EmployeeID)
		}
		seen[rec.EmployeeID] = true
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	profiles, base, err := s.sources(ctx, companyID, month, year)
	if err != nil {
		return nil, err
	}

	var (
		unknown    validator.ValidationErrors
		violations attendance.InvariantViolations
	)
	finalized := make([]attendance.AttendanceSummary, 0, len(records))

	for _, rec := range records {
		profile, ok := profiles[rec.EmployeeID]
		if !ok {
			unknown = append(unknown, validator.ValidationError{
				Field:   "employee_id",
				Message: "no shift profile for employee " + rec.EmployeeID,
			})
			continue
		}

		b, ok := base[rec.EmployeeID]
		if !ok {
			b = attendance.BaseRecord{EmployeeID: rec.EmployeeID}
		}
		summary, _, err := s.prepare(companyID, month, year, profile, b)
		if err != nil {
			return nil, err
		}

		d := s.engine.Verify(rec.EmployeeID, month, year, rec.Final)
		if !d.Valid {
			violations = append(violations, d.Violation)
			continue
		}

		summary.Final = d.Final
		summary.Remarks = rec.Remarks
		finalized = append(finalized, summary)
	}

	if len(unknown) > 0 {
		return nil, unknown
	}
	if len(violations) > 0 {
		slog.Warn("attendance summary set rejected", "month", month, "year", year, "violations", len(violations))
		return nil, violations
	}
	return finalized, nil
}

// sources loads the active shift profiles and the base figures of a period,
// both keyed by employee.
func (s *SummaryServiceImpl) sources(ctx context.Context, companyID string, month, year int) (map[string]attendance.ShiftProfile, map[string]attendance.BaseRecord, error) {
	var (
		profiles []attendance.ShiftProfile
		base     []attendance.BaseRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.directory.ListActiveProfiles(gctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to list shift profiles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		base, err = s.base.ComputeBase(gctx, companyID, month, year)
		if err != nil {
			return fmt.Errorf("failed to compute base attendance: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	byProfile := make(map[string]attendance.ShiftProfile, len(profiles))
	for _, p := range profiles {
		byProfile[p.EmployeeID] = p
	}
	byBase := make(map[string]attendance.BaseRecord, len(base))
	for _, b := range base {
		byBase[b.EmployeeID] = b
	}
	return byProfile, byBase, nil
}

// resolveShift looks the employee up in the directory. A profile carried by
// the record is ignored.
func (s *SummaryServiceImpl) resolveShift(ctx context.Context, rec attendance.AttendanceSummary) (attendance.ShiftProfile, error) {
	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.ShiftProfile{}, err
	}

	profile, err := s.directory.GetProfile(ctx, companyID, rec.EmployeeID)
	if err != nil {
		if errors.Is(err, attendance.ErrShiftProfileNotFound) {
			return attendance.ShiftProfile{}, validator.ValidationErrors{
				{Field: "employee_id", Message: "no shift profile for employee " + rec.EmployeeID},
			}
		}
		return attendance.ShiftProfile{}, fmt.Errorf("failed to get shift profile: %w", err)
	}
	return profile, nil
}
