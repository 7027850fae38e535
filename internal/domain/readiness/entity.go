package readiness

import (
	"sort"
	"time"
)

// CheckStatus is the verdict of a single prerequisite check.
type CheckStatus string

const (
	CheckStatusPassed  CheckStatus = "PASSED"
	CheckStatusFailed  CheckStatus = "FAILED"
	CheckStatusWarning CheckStatus = "WARNING"
	CheckStatusPending CheckStatus = "PENDING"
)

// OverallStatus is the readiness verdict of a whole period.
type OverallStatus string

const (
	OverallReady             OverallStatus = "READY"
	OverallReadyWithWarnings OverallStatus = "READY_WITH_WARNINGS"
	OverallNotReady          OverallStatus = "NOT_READY"
	OverallError             OverallStatus = "ERROR"
)

// Names of the checks run by the local checker.
const (
	CheckWorkSchedule      = "work_schedule"
	CheckBaseSalary        = "base_salary"
	CheckPendingAttendance = "pending_attendance"
	CheckPendingLeave      = "pending_leave"
)

type Issue struct {
	EmployeeID   string `json:"employee_id,omitempty"`
	EmployeeName string `json:"employee_name,omitempty"`
	Message      string `json:"message"`
}

type CheckResult struct {
	Status CheckStatus `json:"status"`
	Count  int         `json:"count"`
	Issues []Issue     `json:"issues,omitempty"`
}

// Report is re-derived on every call and never persisted.
type Report struct {
	Month           int                    `json:"month"`
	Year            int                    `json:"year"`
	Checks          map[string]CheckResult `json:"checks"`
	TotalEmployees  int                    `json:"total_employees"`
	PassedEmployees int                    `json:"passed_employees"`
	OverallStatus   OverallStatus          `json:"overall_status"`
	Error           string                 `json:"error,omitempty"`
	GeneratedAt     time.Time              `json:"generated_at"`
}

// Ready reports whether attendance processing may start.
func (r Report) Ready() bool {
	return r.OverallStatus == OverallReady && r.TotalEmployees == r.PassedEmployees
}

// FailedChecks returns the names of checks that did not pass, sorted by name.
func (r Report) FailedChecks() []string {
	var names []string
	for name, check := range r.Checks {
		if check.Status != CheckStatusPassed {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
