package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

func minutesToHours(minutes int64) decimal.Decimal {
	return decimal.NewFromInt(minutes).DivRound(sixty, 4)
}

// ========== BASE ATTENDANCE ==========

type baseSource struct {
	db *database.DB
}

// NewBaseSource computes base figures from the attendances of the month.
// Days of the month that are not working days of the employee's schedule count
// as weekly off. Leave taken under a quota-based leave type is paid.
func NewBaseSource(db *database.DB) attendance.BaseSource {
	return &baseSource{db: db}
}

func (b *baseSource) ComputeBase(ctx context.Context, companyID string, month, year int) ([]attendance.BaseRecord, error) {
	q := GetQuerier(ctx, b.db)

	query := `
		WITH bounds AS (
			SELECT make_date($2, $3, 1) AS first_day,
				   (make_date($2, $3, 1) + INTERVAL '1 month')::date AS next_month
		),
		month_days AS (
			SELECT d::date AS day
			FROM bounds, generate_series(bounds.first_day, bounds.next_month - 1, INTERVAL '1 day') d
		),
		active AS (
			SELECT e.id, e.work_schedule_id
			FROM employees e
			WHERE e.company_id = $1 AND e.employment_status = 'active' AND e.deleted_at IS NULL
		),
		att AS (
			SELECT a.employee_id,
				COUNT(*) FILTER (WHERE a.status IN ('present', 'late')) AS present_days,
				COUNT(*) FILTER (WHERE a.status = 'holiday') AS holiday_days,
				COUNT(*) FILTER (WHERE a.status = 'on_leave' AND COALESCE(lt.has_quota, false)) AS paid_leave_days,
				COUNT(*) FILTER (WHERE a.status = 'on_leave' AND NOT COALESCE(lt.has_quota, false)) AS unpaid_leave_days,
				COALESCE(SUM(a.work_hours_in_minutes) FILTER (WHERE a.status IN ('present', 'late')), 0) AS work_minutes,
				COALESCE(SUM(a.late_minutes), 0) AS late_minutes,
				COALESCE(SUM(a.early_leave_minutes), 0) AS early_leave_minutes
			FROM attendances a
			CROSS JOIN bounds
			LEFT JOIN leave_types lt ON lt.id = a.leave_type_id
			WHERE a.company_id = $1 AND a.date >= bounds.first_day AND a.date < bounds.next_month
			GROUP BY a.employee_id
		),
		off AS (
			SELECT act.id AS employee_id, COUNT(*) AS weekly_off_days
			FROM active act
			CROSS JOIN month_days md
			WHERE act.work_schedule_id IS NOT NULL
				AND NOT EXISTS (
					SELECT 1 FROM work_schedule_times wst
					WHERE wst.work_schedule_id = act.work_schedule_id
						AND wst.day_of_week = EXTRACT(ISODOW FROM md.day)
				)
			GROUP BY act.id
		)
		SELECT act.id,
			COALESCE(att.present_days, 0), COALESCE(off.weekly_off_days, 0), COALESCE(att.holiday_days, 0),
			COALESCE(att.paid_leave_days, 0), COALESCE(att.unpaid_leave_days, 0),
			COALESCE(att.work_minutes, 0), COALESCE(att.late_minutes, 0), COALESCE(att.early_leave_minutes, 0)
		FROM active act
		LEFT JOIN att ON att.employee_id = act.id
		LEFT JOIN off ON off.employee_id = act.id
	`

	rows, err := q.Query(ctx, query, companyID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to compute base attendance: %w", err)
	}
	defer rows.Close()

	records := []attendance.BaseRecord{}
	for rows.Next() {
		var (
			rec                                       attendance.BaseRecord
			present, weeklyOff, holiday, paid, unpaid int64
			workMinutes, lateMinutes, earlyMinutes    int64
		)
		if err := rows.Scan(
			&rec.EmployeeID, &present, &weeklyOff, &holiday, &paid, &unpaid,
			&workMinutes, &lateMinutes, &earlyMinutes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan base attendance: %w", err)
		}

		rec.Fields.PresentDays = decimal.NewFromInt(present)
		rec.Fields.WeeklyOffDays = decimal.NewFromInt(weeklyOff)
		rec.Fields.HolidayDays = decimal.NewFromInt(holiday)
		rec.Fields.PaidLeaveDays = decimal.NewFromInt(paid)
		rec.Fields.UnpaidLeaveDays = decimal.NewFromInt(unpaid)
		rec.Fields.WorkHours = minutesToHours(workMinutes)
		rec.Fields.LateMinutes = decimal.NewFromInt(lateMinutes)
		rec.Fields.ShortHours = minutesToHours(earlyMinutes)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate base attendance: %w", err)
	}

	return records, nil
}

// ========== SHIFT DIRECTORY ==========

type shiftDirectory struct {
	db *database.DB
}

// NewShiftDirectory derives standard daily hours from the average working
// time of the employee's schedule days, net of breaks. Overtime eligibility
// follows the company payroll settings.
func NewShiftDirectory(db *database.DB) attendance.ShiftDirectory {
	return &shiftDirectory{db: db}
}

const profileQuery = `
	SELECT e.id, e.employee_code, e.full_name,
		COALESCE((
			SELECT ROUND(AVG(
				EXTRACT(EPOCH FROM (wst.clock_out_time - wst.clock_in_time)) / 3600
				+ CASE WHEN wst.is_next_day_checkout THEN 24 ELSE 0 END
				- COALESCE(EXTRACT(EPOCH FROM (wst.break_end_time - wst.break_start_time)) / 3600, 0)
			)::numeric, 2)
			FROM work_schedule_times wst
			WHERE wst.work_schedule_id = e.work_schedule_id
		), $2::numeric) AS standard_daily_hours,
		COALESCE(ps.overtime_enabled, false) AS overtime_eligible
	FROM employees e
	LEFT JOIN payroll_settings ps ON ps.company_id = e.company_id
	WHERE e.company_id = $1 AND e.employment_status = 'active' AND e.deleted_at IS NULL
`

func scanProfile(row pgx.Row) (attendance.ShiftProfile, error) {
	var p attendance.ShiftProfile
	err := row.Scan(&p.EmployeeID, &p.EmployeeCode, &p.EmployeeName, &p.StandardDailyHours, &p.OvertimeEligible)
	return p, err
}

func (d *shiftDirectory) ListActiveProfiles(ctx context.Context, companyID string) ([]attendance.ShiftProfile, error) {
	q := GetQuerier(ctx, d.db)

	rows, err := q.Query(ctx, profileQuery+` ORDER BY e.full_name, e.employee_code`, companyID, attendance.DefaultStandardDailyHours)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift profiles: %w", err)
	}
	defer rows.Close()

	profiles := []attendance.ShiftProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shift profiles: %w", err)
	}

	return profiles, nil
}

func (d *shiftDirectory) GetProfile(ctx context.Context, companyID string, employeeID string) (attendance.ShiftProfile, error) {
	q := GetQuerier(ctx, d.db)

	p, err := scanProfile(q.QueryRow(ctx, profileQuery+` AND e.id = $3`, companyID, attendance.DefaultStandardDailyHours, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ShiftProfile{}, attendance.ErrShiftProfileNotFound
		}
		return attendance.ShiftProfile{}, fmt.Errorf("failed to get shift profile: %w", err)
	}

	return p, nil
}
