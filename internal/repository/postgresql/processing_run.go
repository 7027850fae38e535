package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type runRepository struct {
	db *database.DB
}

func NewRunRepository(db *database.DB) payroll.RunRepository {
	return &runRepository{db: db}
}

const runColumns = `
	id, company_id, period_month, period_year, process_type, status, employee_ids,
	employees_processed, gross_pay, deductions, net_pay, lines, errors,
	error_message, started_by, started_at, completed_at
`

func scanRun(row pgx.Row) (payroll.ProcessingRun, error) {
	var (
		run                   payroll.ProcessingRun
		linesJSON, errorsJSON []byte
	)
	err := row.Scan(
		&run.ID, &run.CompanyID, &run.Month, &run.Year, &run.ProcessType, &run.Status, &run.EmployeeIDs,
		&run.EmployeesProcessed, &run.GrossPay, &run.Deductions, &run.NetPay, &linesJSON, &errorsJSON,
		&run.ErrorMessage, &run.StartedBy, &run.StartedAt, &run.CompletedAt,
	)
	if err != nil {
		return payroll.ProcessingRun{}, err
	}
	if err := json.Unmarshal(linesJSON, &run.Lines); err != nil {
		return payroll.ProcessingRun{}, fmt.Errorf("failed to decode run lines: %w", err)
	}
	if err := json.Unmarshal(errorsJSON, &run.Errors); err != nil {
		return payroll.ProcessingRun{}, fmt.Errorf("failed to decode run errors: %w", err)
	}
	return run, nil
}

func (r *runRepository) Create(ctx context.Context, run payroll.ProcessingRun) (payroll.ProcessingRun, error) {
	q := GetQuerier(ctx, r.db)

	employeeIDs := run.EmployeeIDs
	if employeeIDs == nil {
		employeeIDs = []string{}
	}

	query := `
		INSERT INTO payroll_processing_runs (
			company_id, period_month, period_year, process_type, status, employee_ids, started_by, started_at
		) VALUES ($1, $2, $3, $4, 'IN_PROGRESS', $5, $6, $7)
		RETURNING ` + runColumns

	created, err := scanRun(q.QueryRow(ctx, query,
		run.CompanyID, run.Month, run.Year, run.ProcessType, employeeIDs, run.StartedBy, run.StartedAt,
	))
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_run_in_progress") {
			return payroll.ProcessingRun{}, payroll.ErrRunConflict
		}
		return payroll.ProcessingRun{}, fmt.Errorf("failed to create processing run: %w", err)
	}

	return created, nil
}

func (r *runRepository) Finish(ctx context.Context, run payroll.ProcessingRun) error {
	q := GetQuerier(ctx, r.db)

	lines := run.Lines
	if lines == nil {
		lines = []payroll.PayLine{}
	}
	linesJSON, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode run lines: %w", err)
	}
	runErrors := run.Errors
	if runErrors == nil {
		runErrors = []payroll.RunError{}
	}
	errorsJSON, err := json.Marshal(runErrors)
	if err != nil {
		return fmt.Errorf("failed to encode run errors: %w", err)
	}

	query := `
		UPDATE payroll_processing_runs
		SET status = $3, employees_processed = $4, gross_pay = $5, deductions = $6, net_pay = $7,
			lines = $8, errors = $9, error_message = $10, completed_at = $11
		WHERE id = $1 AND company_id = $2 AND status = 'IN_PROGRESS'
	`

	tag, err := q.Exec(ctx, query,
		run.ID, run.CompanyID, run.Status, run.EmployeesProcessed, run.GrossPay, run.Deductions, run.NetPay,
		string(linesJSON), string(errorsJSON), run.ErrorMessage, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to finish processing run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM payroll_processing_runs WHERE id = $1 AND company_id = $2)`,
			run.ID, run.CompanyID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check processing run: %w", err)
		}
		if !exists {
			return payroll.ErrRunNotFound
		}
		return payroll.ErrRunConflict
	}

	return nil
}

func (r *runRepository) GetLatest(ctx context.Context, companyID string, month, year int) (payroll.ProcessingRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + `
		FROM payroll_processing_runs
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`

	run, err := scanRun(q.QueryRow(ctx, query, companyID, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.ProcessingRun{}, payroll.ErrRunNotFound
		}
		return payroll.ProcessingRun{}, fmt.Errorf("failed to get latest processing run: %w", err)
	}

	return run, nil
}

func (r *runRepository) ListByPeriod(ctx context.Context, companyID string, month, year int) ([]payroll.ProcessingRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + `
		FROM payroll_processing_runs
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3
		ORDER BY started_at DESC, id DESC
	`

	rows, err := q.Query(ctx, query, companyID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing runs: %w", err)
	}
	defer rows.Close()

	runs := []payroll.ProcessingRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan processing run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate processing runs: %w", err)
	}

	return runs, nil
}

func (r *runRepository) DeleteByPeriod(ctx context.Context, companyID string, month, year int) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`DELETE FROM payroll_processing_runs WHERE company_id = $1 AND period_month = $2 AND period_year = $3`,
		companyID, month, year,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processing runs: %w", err)
	}

	return tag.RowsAffected(), nil
}
