package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type periodRepository struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) payroll.PeriodRepository {
	return &periodRepository{db: db}
}

func (r *periodRepository) GetByPeriod(ctx context.Context, companyID string, month, year int) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, period_month, period_year, status, completed_at, created_at, updated_at
		FROM payroll_periods
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3
	`

	var p payroll.PayrollPeriod
	err := q.QueryRow(ctx, query, companyID, month, year).Scan(
		&p.ID, &p.CompanyID, &p.Month, &p.Year, &p.Status, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

func (r *periodRepository) Create(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	if period.Status == "" {
		period.Status = payroll.PeriodStatusDraft
	}

	query := `
		INSERT INTO payroll_periods (company_id, period_month, period_year, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, company_id, period_month, period_year, status, completed_at, created_at, updated_at
	`

	var p payroll.PayrollPeriod
	err := q.QueryRow(ctx, query, period.CompanyID, period.Month, period.Year, period.Status).Scan(
		&p.ID, &p.CompanyID, &p.Month, &p.Year, &p.Status, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_period") {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodAlreadyExists
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return p, nil
}

// GetOrCreate inserts with ON CONFLICT DO NOTHING and reads the row back in a
// separate statement, which sees a row committed by a concurrent insert.
func (r *periodRepository) GetOrCreate(ctx context.Context, companyID string, month, year int) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	insert := `
		INSERT INTO payroll_periods (company_id, period_month, period_year, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT uk_payroll_period DO NOTHING
	`
	if _, err := q.Exec(ctx, insert, companyID, month, year, payroll.PeriodStatusDraft); err != nil {
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	query := `
		SELECT id, company_id, period_month, period_year, status, completed_at, created_at, updated_at
		FROM payroll_periods
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3
		FOR UPDATE
	`

	var p payroll.PayrollPeriod
	err := q.QueryRow(ctx, query, companyID, month, year).Scan(
		&p.ID, &p.CompanyID, &p.Month, &p.Year, &p.Status, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

// TransitionStatus relies on the status predicate of the UPDATE; two callers
// racing from the same status cannot both succeed.
func (r *periodRepository) TransitionStatus(ctx context.Context, companyID string, month, year int, from, to payroll.PeriodStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET status = $5,
			completed_at = CASE WHEN $5 = 'COMPLETED' THEN NOW() ELSE completed_at END,
			updated_at = NOW()
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3 AND status = $4
	`

	tag, err := q.Exec(ctx, query, companyID, month, year, string(from), string(to))
	if err != nil {
		return fmt.Errorf("failed to update payroll period status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := r.GetByPeriod(ctx, companyID, month, year); err != nil {
		return err
	}
	return payroll.ErrRunConflict
}

func (r *periodRepository) Delete(ctx context.Context, companyID string, month, year int) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM payroll_periods WHERE company_id = $1 AND period_month = $2 AND period_year = $3`

	tag, err := q.Exec(ctx, query, companyID, month, year)
	if err != nil {
		return 0, fmt.Errorf("failed to delete payroll period: %w", err)
	}

	return tag.RowsAffected(), nil
}
