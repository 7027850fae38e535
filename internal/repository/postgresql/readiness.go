package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/readiness"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/database"
)

type readinessChecker struct {
	db *database.DB
}

// NewReadinessChecker runs the prerequisite checks against the HRIS tables.
// Missing schedules and salaries fail an employee; attendance and leave still
// awaiting approval only warn.
func NewReadinessChecker(db *database.DB) readiness.Checker {
	return &readinessChecker{db: db}
}

func (c *readinessChecker) Validate(ctx context.Context, companyID string, month, year int) (readiness.Report, error) {
	q := GetQuerier(ctx, c.db)

	report := readiness.Report{
		Month:       month,
		Year:        year,
		Checks:      make(map[string]readiness.CheckResult, 4),
		GeneratedAt: time.Now().UTC(),
	}

	// Blocking checks, one row per failing employee and check
	rows, err := q.Query(ctx, `
		SELECT 'work_schedule' AS check_name, e.id, e.full_name
		FROM employees e
		WHERE e.company_id = $1 AND e.employment_status = 'active' AND e.deleted_at IS NULL
			AND e.work_schedule_id IS NULL
		UNION ALL
		SELECT 'base_salary', e.id, e.full_name
		FROM employees e
		WHERE e.company_id = $1 AND e.employment_status = 'active' AND e.deleted_at IS NULL
			AND (e.base_salary IS NULL OR e.base_salary <= 0)
		ORDER BY 1, 3
	`, companyID)
	if err != nil {
		return readiness.Report{}, fmt.Errorf("failed to run blocking checks: %w", err)
	}

	failing := make(map[string]bool)
	blocking := map[string]*readiness.CheckResult{
		readiness.CheckWorkSchedule: {Status: readiness.CheckStatusPassed},
		readiness.CheckBaseSalary:   {Status: readiness.CheckStatusPassed},
	}
	for rows.Next() {
		var name, employeeID, employeeName string
		if err := rows.Scan(&name, &employeeID, &employeeName); err != nil {
			rows.Close()
			return readiness.Report{}, fmt.Errorf("failed to scan check result: %w", err)
		}
		check := blocking[name]
		check.Status = readiness.CheckStatusFailed
		check.Count++
		check.Issues = append(check.Issues, readiness.Issue{
			EmployeeID:   employeeID,
			EmployeeName: employeeName,
			Message:      issueMessage(name),
		})
		failing[employeeID] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return readiness.Report{}, fmt.Errorf("failed to iterate check results: %w", err)
	}
	for name, check := range blocking {
		report.Checks[name] = *check
	}

	var total, pendingAttendance, pendingLeave int
	err = q.QueryRow(ctx, `
		WITH bounds AS (
			SELECT make_date($2, $3, 1) AS first_day,
				   (make_date($2, $3, 1) + INTERVAL '1 month')::date AS next_month
		)
		SELECT
			(SELECT COUNT(*) FROM employees e
			 WHERE e.company_id = $1 AND e.employment_status = 'active' AND e.deleted_at IS NULL),
			(SELECT COUNT(*) FROM attendances a, bounds
			 WHERE a.company_id = $1 AND a.status = 'waiting_approval'
				AND a.date >= bounds.first_day AND a.date < bounds.next_month),
			(SELECT COUNT(*) FROM leave_requests lr
			 JOIN employees e ON lr.employee_id = e.id, bounds
			 WHERE e.company_id = $1 AND lr.status = 'waiting_approval'
				AND lr.start_date < bounds.next_month AND lr.end_date >= bounds.first_day)
	`, companyID, year, month).Scan(&total, &pendingAttendance, &pendingLeave)
	if err != nil {
		return readiness.Report{}, fmt.Errorf("failed to run warning checks: %w", err)
	}

	report.Checks[readiness.CheckPendingAttendance] = warningCheck(pendingAttendance, "attendance records awaiting approval")
	report.Checks[readiness.CheckPendingLeave] = warningCheck(pendingLeave, "leave requests awaiting approval")

	report.TotalEmployees = total
	report.PassedEmployees = total - len(failing)
	return report, nil
}

func issueMessage(check string) string {
	switch check {
	case readiness.CheckWorkSchedule:
		return "no work schedule assigned"
	case readiness.CheckBaseSalary:
		return "base salary is not set"
	default:
		return check
	}
}

func warningCheck(count int, what string) readiness.CheckResult {
	if count == 0 {
		return readiness.CheckResult{Status: readiness.CheckStatusPassed}
	}
	return readiness.CheckResult{
		Status: readiness.CheckStatusWarning,
		Count:  count,
		Issues: []readiness.Issue{{Message: fmt.Sprintf("%d %s", count, what)}},
	}
}
