package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field names a single quantity of an attendance summary. The same names are
// used for the base and the final group and as override keys.
type Field string

const (
	FieldPresentDays      Field = "present_days"
	FieldWeeklyOffDays    Field = "weekly_off_days"
	FieldHolidayDays      Field = "holiday_days"
	FieldPaidLeaveDays    Field = "paid_leave_days"
	FieldUnpaidLeaveDays  Field = "unpaid_leave_days"
	FieldPayableDays      Field = "payable_days"
	FieldWorkHours        Field = "work_hours"
	FieldWeeklyOffHours   Field = "weekly_off_hours"
	FieldHolidayHours     Field = "holiday_hours"
	FieldPaidLeaveHours   Field = "paid_leave_hours"
	FieldUnpaidLeaveHours Field = "unpaid_leave_hours"
	FieldPayableHours     Field = "payable_hours"
	FieldRequiredHours    Field = "required_hours"
	FieldOTHours          Field = "ot_hours"
	FieldLateMinutes      Field = "late_minutes"
	FieldShortHours       Field = "short_hours"
)

// Unit tells how operator input for a field is parsed.
type Unit string

const (
	UnitDays    Unit = "days"
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
)

// Fields lists every attendance field in display order.
var Fields = []Field{
	FieldPresentDays, FieldWeeklyOffDays, FieldHolidayDays, FieldPaidLeaveDays, FieldUnpaidLeaveDays,
	FieldPayableDays, FieldWorkHours, FieldWeeklyOffHours, FieldHolidayHours, FieldPaidLeaveHours,
	FieldUnpaidLeaveHours, FieldPayableHours, FieldRequiredHours, FieldOTHours, FieldLateMinutes, FieldShortHours,
}

// DayCountFields are the components summed into payable days.
var DayCountFields = []Field{
	FieldPresentDays, FieldWeeklyOffDays, FieldHolidayDays, FieldPaidLeaveDays, FieldUnpaidLeaveDays,
}

func (f Field) Unit() Unit {
	switch f {
	case FieldPresentDays, FieldWeeklyOffDays, FieldHolidayDays, FieldPaidLeaveDays,
		FieldUnpaidLeaveDays, FieldPayableDays:
		return UnitDays
	case FieldLateMinutes:
		return UnitMinutes
	default:
		return UnitHours
	}
}

func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// AttendanceFields holds one group (base or final) of summary quantities.
type AttendanceFields struct {
	PresentDays      decimal.Decimal `json:"present_days"`
	WeeklyOffDays    decimal.Decimal `json:"weekly_off_days"`
	HolidayDays      decimal.Decimal `json:"holiday_days"`
	PaidLeaveDays    decimal.Decimal `json:"paid_leave_days"`
	UnpaidLeaveDays  decimal.Decimal `json:"unpaid_leave_days"`
	PayableDays      decimal.Decimal `json:"payable_days"`
	WorkHours        decimal.Decimal `json:"work_hours"`
	WeeklyOffHours   decimal.Decimal `json:"weekly_off_hours"`
	HolidayHours     decimal.Decimal `json:"holiday_hours"`
	PaidLeaveHours   decimal.Decimal `json:"paid_leave_hours"`
	UnpaidLeaveHours decimal.Decimal `json:"unpaid_leave_hours"`
	PayableHours     decimal.Decimal `json:"payable_hours"`
	RequiredHours    decimal.Decimal `json:"required_hours"`
	OTHours          decimal.Decimal `json:"ot_hours"`
	LateMinutes      decimal.Decimal `json:"late_minutes"`
	ShortHours       decimal.Decimal `json:"short_hours"`
}

func (a *AttendanceFields) ptr(f Field) *decimal.Decimal {
	switch f {
	case FieldPresentDays:
		return &a.PresentDays
	case FieldWeeklyOffDays:
		return &a.WeeklyOffDays
	case FieldHolidayDays:
		return &a.HolidayDays
	case FieldPaidLeaveDays:
		return &a.PaidLeaveDays
	case FieldUnpaidLeaveDays:
		return &a.UnpaidLeaveDays
	case FieldPayableDays:
		return &a.PayableDays
	case FieldWorkHours:
		return &a.WorkHours
	case FieldWeeklyOffHours:
		return &a.WeeklyOffHours
	case FieldHolidayHours:
		return &a.HolidayHours
	case FieldPaidLeaveHours:
		return &a.PaidLeaveHours
	case FieldUnpaidLeaveHours:
		return &a.UnpaidLeaveHours
	case FieldPayableHours:
		return &a.PayableHours
	case FieldRequiredHours:
		return &a.RequiredHours
	case FieldOTHours:
		return &a.OTHours
	case FieldLateMinutes:
		return &a.LateMinutes
	case FieldShortHours:
		return &a.ShortHours
	}
	return nil
}

// Get returns the value of f, or zero for an unknown field.
func (a AttendanceFields) Get(f Field) decimal.Decimal {
	if p := a.ptr(f); p != nil {
		return *p
	}
	return decimal.Zero
}

// Set assigns v to f. Unknown fields are ignored.
func (a *AttendanceFields) Set(f Field, v decimal.Decimal) {
	if p := a.ptr(f); p != nil {
		*p = v
	}
}

// DefaultStandardDailyHours applies to employees whose schedule has no working day.
var DefaultStandardDailyHours = decimal.NewFromInt(8)

// ShiftProfile is the employee/shift directory entry consumed by the
// recalculation cascade.
type ShiftProfile struct {
	EmployeeID         string          `json:"employee_id"`
	EmployeeCode       string          `json:"employee_code"`
	EmployeeName       string          `json:"employee_name"`
	StandardDailyHours decimal.Decimal `json:"standard_daily_hours"`
	OvertimeEligible   bool            `json:"overtime_eligible"`
}

// BaseRecord is the per-employee output of the base attendance computation.
type BaseRecord struct {
	EmployeeID string
	Fields     AttendanceFields
}

// AttendanceSummary is the month summary of one employee. Final is resolved
// from Base once, when the summary is created, and is authoritative after that.
type AttendanceSummary struct {
	ID           string           `json:"id,omitempty"`
	CompanyID    string           `json:"company_id,omitempty"`
	EmployeeID   string           `json:"employee_id"`
	EmployeeCode string           `json:"employee_code"`
	EmployeeName string           `json:"employee_name"`
	Month        int              `json:"month"`
	Year         int              `json:"year"`
	Shift        ShiftProfile     `json:"shift"`
	Base         AttendanceFields `json:"base"`
	Final        AttendanceFields `json:"final"`
	Remarks      *string          `json:"remarks,omitempty"`
	CreatedAt    time.Time        `json:"created_at,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at,omitempty"`
}

// NewSummary builds an unsaved summary whose final group starts as a copy of
// the base group.
func NewSummary(companyID string, month, year int, profile ShiftProfile, base AttendanceFields) AttendanceSummary {
	return AttendanceSummary{
		CompanyID:    companyID,
		EmployeeID:   profile.EmployeeID,
		EmployeeCode: profile.EmployeeCode,
		EmployeeName: profile.EmployeeName,
		Month:        month,
		Year:         year,
		Shift:        profile,
		Base:         base,
		Final:        base,
	}
}

// DaysInMonth returns the number of calendar days of month in year.
func DaysInMonth(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
