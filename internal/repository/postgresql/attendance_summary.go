package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type summaryRepository struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) attendance.SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) ListByPeriod(ctx context.Context, companyID string, month, year int) ([]attendance.AttendanceSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, employee_code, employee_name, period_month, period_year,
			   shift, base_fields, final_fields, remarks, created_at, updated_at
		FROM attendance_summaries
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3
		ORDER BY employee_name, employee_code
	`

	rows, err := q.Query(ctx, query, companyID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance summaries: %w", err)
	}
	defer rows.Close()

	summaries := []attendance.AttendanceSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance summaries: %w", err)
	}

	return summaries, nil
}

func scanSummary(rows pgx.Rows) (attendance.AttendanceSummary, error) {
	var (
		s                              attendance.AttendanceSummary
		shiftJSON, baseJSON, finalJSON []byte
	)
	if err := rows.Scan(
		&s.ID, &s.CompanyID, &s.EmployeeID, &s.EmployeeCode, &s.EmployeeName, &s.Month, &s.Year,
		&shiftJSON, &baseJSON, &finalJSON, &s.Remarks, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return attendance.AttendanceSummary{}, fmt.Errorf("failed to scan attendance summary: %w", err)
	}
	if err := json.Unmarshal(shiftJSON, &s.Shift); err != nil {
		return attendance.AttendanceSummary{}, fmt.Errorf("failed to decode shift of %s: %w", s.EmployeeID, err)
	}
	if err := json.Unmarshal(baseJSON, &s.Base); err != nil {
		return attendance.AttendanceSummary{}, fmt.Errorf("failed to decode base fields of %s: %w", s.EmployeeID, err)
	}
	if err := json.Unmarshal(finalJSON, &s.Final); err != nil {
		return attendance.AttendanceSummary{}, fmt.Errorf("failed to decode final fields of %s: %w", s.EmployeeID, err)
	}
	return s, nil
}

func (r *summaryRepository) CountByPeriod(ctx context.Context, companyID string, month, year int) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendance_summaries WHERE company_id = $1 AND period_month = $2 AND period_year = $3`,
		companyID, month, year,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance summaries: %w", err)
	}

	return count, nil
}

func (r *summaryRepository) ReplaceForPeriod(ctx context.Context, companyID string, month, year int, records []attendance.AttendanceSummary) error {
	q := GetQuerier(ctx, r.db)

	if _, err := r.DeleteByPeriod(ctx, companyID, month, year); err != nil {
		return err
	}

	query := `
		INSERT INTO attendance_summaries (
			company_id, employee_id, employee_code, employee_name, period_month, period_year,
			shift, base_fields, final_fields, payable_days, remarks
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, rec := range records {
		shift, err := json.Marshal(rec.Shift)
		if err != nil {
			return fmt.Errorf("failed to encode shift of %s: %w", rec.EmployeeID, err)
		}
		base, err := json.Marshal(rec.Base)
		if err != nil {
			return fmt.Errorf("failed to encode base fields of %s: %w", rec.EmployeeID, err)
		}
		final, err := json.Marshal(rec.Final)
		if err != nil {
			return fmt.Errorf("failed to encode final fields of %s: %w", rec.EmployeeID, err)
		}

		if _, err := q.Exec(ctx, query,
			companyID, rec.EmployeeID, rec.EmployeeCode, rec.EmployeeName, month, year,
			string(shift), string(base), string(final), rec.Final.PayableDays, rec.Remarks,
		); err != nil {
			return fmt.Errorf("failed to insert attendance summary of %s: %w", rec.EmployeeID, err)
		}
	}

	return nil
}

func (r *summaryRepository) DeleteByPeriod(ctx context.Context, companyID string, month, year int) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`DELETE FROM attendance_summaries WHERE company_id = $1 AND period_month = $2 AND period_year = $3`,
		companyID, month, year,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attendance summaries: %w", err)
	}

	return tag.RowsAffected(), nil
}
