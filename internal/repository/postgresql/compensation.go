package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type compensationRepository struct {
	db *database.DB
}

func NewCompensationRepository(db *database.DB) payroll.CompensationRepository {
	return &compensationRepository{db: db}
}

// ========== SETTINGS ==========

func (r *compensationRepository) GetSettings(ctx context.Context, companyID string) (payroll.PayrollSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, late_deduction_enabled, late_deduction_per_minute,
			   overtime_enabled, overtime_pay_per_minute,
			   early_leave_deduction_enabled, early_leave_deduction_per_minute,
			   created_at, updated_at
		FROM payroll_settings
		WHERE company_id = $1
	`

	var s payroll.PayrollSettings
	err := q.QueryRow(ctx, query, companyID).Scan(
		&s.ID, &s.CompanyID, &s.LateDeductionEnabled, &s.LateDeductionPerMinute,
		&s.OvertimeEnabled, &s.OvertimePayPerMinute,
		&s.EarlyLeaveDeductionEnabled, &s.EarlyLeaveDeductionPerMinute,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollSettings{}, payroll.ErrPayrollSettingsNotFound
		}
		return payroll.PayrollSettings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}

	return s, nil
}

// ========== COMPENSATION ==========

// ListCompensation reads base salaries from employees and the components
// whose effective window contains asOf. Employees outside the company are
// left out of the result.
func (r *compensationRepository) ListCompensation(ctx context.Context, companyID string, employeeIDs []string, asOf time.Time) (map[string]payroll.Compensation, error) {
	q := GetQuerier(ctx, r.db)

	out := make(map[string]payroll.Compensation, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}

	rows, err := q.Query(ctx, `
		SELECT id, base_salary
		FROM employees
		WHERE company_id = $1 AND id = ANY($2) AND deleted_at IS NULL
	`, companyID, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get base salaries: %w", err)
	}
	for rows.Next() {
		var c payroll.Compensation
		if err := rows.Scan(&c.EmployeeID, &c.BaseSalary); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan base salary: %w", err)
		}
		out[c.EmployeeID] = c
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate base salaries: %w", err)
	}

	rows, err = q.Query(ctx, `
		SELECT epc.employee_id, pc.name, pc.type, epc.amount
		FROM employee_payroll_components epc
		JOIN payroll_components pc ON epc.payroll_component_id = pc.id
		JOIN employees e ON epc.employee_id = e.id
		WHERE e.company_id = $1 AND epc.employee_id = ANY($2) AND pc.is_active = true
			AND epc.effective_date <= $3 AND (epc.end_date IS NULL OR epc.end_date >= $3)
		ORDER BY pc.type, pc.name
	`, companyID, employeeIDs, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			employeeID string
			comp       payroll.Component
		)
		if err := rows.Scan(&employeeID, &comp.Name, &comp.Type, &comp.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan employee component: %w", err)
		}
		c, ok := out[employeeID]
		if !ok {
			continue
		}
		c.Components = append(c.Components, comp)
		out[employeeID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee components: %w", err)
	}

	return out, nil
}
