package readiness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/readiness"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
)

// DefaultTimeout bounds a single call to the checker.
const DefaultTimeout = 15 * time.Second

type ServiceImpl struct {
	checker readiness.Checker
	timeout time.Duration
	now     func() time.Time
}

func NewService(checker readiness.Checker, timeout time.Duration) readiness.Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ServiceImpl{
		checker: checker,
		timeout: timeout,
		now:     time.Now,
	}
}

// Evaluate implements readiness.Service.
func (s *ServiceImpl) Evaluate(ctx context.Context, month, year int) (readiness.Report, error) {
	if errs := validator.PeriodErrors(month, year); len(errs) > 0 {
		return readiness.Report{}, errs
	}

	companyID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return readiness.Report{}, err
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.checker.Validate(cctx, companyID, month, year)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("prerequisite checks timed out after %s: %w", s.timeout, err)
		}
		slog.Warn("readiness checks unavailable", "company_id", companyID, "month", month, "year", year, "error", err)
		return s.errorReport(month, year, err), nil
	}

	return Normalize(report, month, year, s.now()), nil
}

func (s *ServiceImpl) errorReport(month, year int, err error) readiness.Report {
	return readiness.Report{
		Month:         month,
		Year:          year,
		Checks:        map[string]readiness.CheckResult{},
		OverallStatus: readiness.OverallError,
		Error:         fmt.Errorf("%w: %v", readiness.ErrReadinessUnavailable, err).Error(),
		GeneratedAt:   s.now().UTC(),
	}
}

// Normalize makes a checker report safe to gate on: statuses are upper-cased,
// unknown check statuses become PENDING, counts are clamped and a missing or
// unknown overall status is derived from the checks.
func Normalize(r readiness.Report, month, year int, now time.Time) readiness.Report {
	out := readiness.Report{
		Month:           month,
		Year:            year,
		Checks:          make(map[string]readiness.CheckResult, len(r.Checks)),
		TotalEmployees:  max(r.TotalEmployees, 0),
		PassedEmployees: max(r.PassedEmployees, 0),
		Error:           r.Error,
		GeneratedAt:     r.GeneratedAt,
	}
	if out.PassedEmployees > out.TotalEmployees {
		out.PassedEmployees = out.TotalEmployees
	}
	if out.GeneratedAt.IsZero() {
		out.GeneratedAt = now.UTC()
	}

	for name, check := range r.Checks {
		check.Status = normalizeCheck(check.Status)
		check.Count = max(check.Count, 0)
		out.Checks[name] = check
	}

	switch status := readiness.OverallStatus(strings.ToUpper(strings.TrimSpace(string(r.OverallStatus)))); status {
	case readiness.OverallReady, readiness.OverallReadyWithWarnings, readiness.OverallNotReady, readiness.OverallError:
		out.OverallStatus = status
	default:
		out.OverallStatus = deriveOverall(out.Checks)
	}
	return out
}

func normalizeCheck(status readiness.CheckStatus) readiness.CheckStatus {
	switch s := readiness.CheckStatus(strings.ToUpper(strings.TrimSpace(string(status)))); s {
	case readiness.CheckStatusPassed, readiness.CheckStatusFailed, readiness.CheckStatusWarning:
		return s
	default:
		return readiness.CheckStatusPending
	}
}

func deriveOverall(checks map[string]readiness.CheckResult) readiness.OverallStatus {
	overall := readiness.OverallReady
	for _, check := range checks {
		switch check.Status {
		case readiness.CheckStatusFailed, readiness.CheckStatusPending:
			return readiness.OverallNotReady
		case readiness.CheckStatusWarning:
			overall = readiness.OverallReadyWithWarnings
		}
	}
	return overall
}
