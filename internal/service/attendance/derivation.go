package attendance

import (
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// rule derives one output field from its inputs. compute returns false when
// the current output value must be kept.
type rule struct {
	output  attendance.Field
	inputs  []attendance.Field
	compute func(f attendance.AttendanceFields, shift attendance.ShiftProfile) (decimal.Decimal, bool)
}

func dayHoursRule(output, days attendance.Field) rule {
	return rule{
		output: output,
		inputs: []attendance.Field{days},
		compute: func(f attendance.AttendanceFields, shift attendance.ShiftProfile) (decimal.Decimal, bool) {
			return f.Get(days).Mul(shift.StandardDailyHours), true
		},
	}
}

// payableDays is the sum of the day counts. It is never taken from the record.
func payableDays(f attendance.AttendanceFields) decimal.Decimal {
	total := decimal.Zero
	for _, day := range attendance.DayCountFields {
		total = total.Add(f.Get(day))
	}
	return total
}

// cascade is listed in dependency order; a rule only reads fields produced by
// rules above it or by payableDays.
var cascade = []rule{
	dayHoursRule(attendance.FieldWeeklyOffHours, attendance.FieldWeeklyOffDays),
	dayHoursRule(attendance.FieldHolidayHours, attendance.FieldHolidayDays),
	dayHoursRule(attendance.FieldPaidLeaveHours, attendance.FieldPaidLeaveDays),
	// Unpaid leave hours are informational and stay out of payable hours.
	dayHoursRule(attendance.FieldUnpaidLeaveHours, attendance.FieldUnpaidLeaveDays),
	{
		output: attendance.FieldPayableHours,
		inputs: []attendance.Field{
			attendance.FieldWorkHours, attendance.FieldWeeklyOffHours,
			attendance.FieldHolidayHours, attendance.FieldPaidLeaveHours,
		},
		compute: func(f attendance.AttendanceFields, _ attendance.ShiftProfile) (decimal.Decimal, bool) {
			return f.WorkHours.Add(f.WeeklyOffHours).Add(f.HolidayHours).Add(f.PaidLeaveHours), true
		},
	},
	{
		output: attendance.FieldRequiredHours,
		inputs: []attendance.Field{attendance.FieldPayableDays},
		compute: func(f attendance.AttendanceFields, shift attendance.ShiftProfile) (decimal.Decimal, bool) {
			return f.PayableDays.Mul(shift.StandardDailyHours), true
		},
	},
	{
		output: attendance.FieldOTHours,
		inputs: []attendance.Field{attendance.FieldPayableHours, attendance.FieldRequiredHours},
		compute: func(f attendance.AttendanceFields, shift attendance.ShiftProfile) (decimal.Decimal, bool) {
			if shift.OvertimeEligible && f.PayableHours.GreaterThan(f.RequiredHours) {
				return f.PayableHours.Sub(f.RequiredHours), true
			}
			return decimal.Zero, false
		},
	},
}

// Triggers are the fields whose change starts the cascade.
var Triggers = []attendance.Field{
	attendance.FieldPresentDays, attendance.FieldWeeklyOffDays, attendance.FieldHolidayDays,
	attendance.FieldPaidLeaveDays, attendance.FieldUnpaidLeaveDays, attendance.FieldWorkHours,
}

// DerivationInput carries everything the cascade reads. Current is the
// record's final group before the overrides are applied.
type DerivationInput struct {
	EmployeeID string
	Month      int
	Year       int
	Current    attendance.AttendanceFields
	Overrides  attendance.Overrides
	Shift      attendance.ShiftProfile

	// Full runs the cascade as if every trigger changed.
	Full bool
}

// Engine applies operator overrides and recomputes dependent fields.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Derive returns a new final group. The record is reported invalid, never
// rejected, when payable days exceed the days of the month.
func (e *Engine) Derive(in DerivationInput) (attendance.Derivation, error) {
	if err := checkNonNegative(in.Overrides); err != nil {
		return attendance.Derivation{}, err
	}

	final := in.Current
	dirty := make(map[attendance.Field]bool)
	for field, value := range in.Overrides {
		final.Set(field, value)
		if isTrigger(field) {
			dirty[field] = true
		}
	}
	if in.Full {
		for _, field := range Triggers {
			dirty[field] = true
		}
	}

	recomputed := []attendance.Field{}
	// Any trigger, or a payable days value that disagrees with the day counts,
	// re-derives payable days and everything that reads it.
	if days := payableDays(final); len(dirty) > 0 || !days.Equal(final.PayableDays) {
		final.PayableDays = days
		dirty[attendance.FieldPayableDays] = true
		recomputed = append(recomputed, attendance.FieldPayableDays)
	}
	for _, r := range cascade {
		if !anyDirty(dirty, r.inputs) {
			continue
		}
		value, ok := r.compute(final, in.Shift)
		if !ok {
			continue
		}
		final.Set(r.output, value)
		dirty[r.output] = true
		recomputed = append(recomputed, r.output)
	}

	return e.check(in.EmployeeID, in.Month, in.Year, final, recomputed), nil
}

// Verify recomputes payable days from the day counts of fields and checks the
// ceiling. Hour values are left as given.
func (e *Engine) Verify(employeeID string, month, year int, fields attendance.AttendanceFields) attendance.Derivation {
	value := payableDays(fields)
	recomputed := []attendance.Field{}
	if !value.Equal(fields.PayableDays) {
		recomputed = append(recomputed, attendance.FieldPayableDays)
	}
	fields.PayableDays = value
	return e.check(employeeID, month, year, fields, recomputed)
}

func (e *Engine) check(employeeID string, month, year int, final attendance.AttendanceFields, recomputed []attendance.Field) attendance.Derivation {
	daysInMonth := attendance.DaysInMonth(month, year)
	result := attendance.Derivation{
		EmployeeID:  employeeID,
		Final:       final,
		Recomputed:  recomputed,
		Valid:       true,
		DaysInMonth: daysInMonth,
	}

	ceiling := decimal.NewFromInt(int64(daysInMonth))
	if final.PayableDays.GreaterThan(ceiling) {
		violation := &attendance.InvariantError{
			EmployeeID: employeeID,
			Field:      attendance.FieldPayableDays,
			Computed:   final.PayableDays,
			Ceiling:    ceiling,
			Month:      month,
			Year:       year,
		}
		result.Valid = false
		result.Violation = violation
		result.Message = violation.Error()
	}
	return result
}

func isTrigger(field attendance.Field) bool {
	for _, t := range Triggers {
		if t == field {
			return true
		}
	}
	return false
}

func anyDirty(dirty map[attendance.Field]bool, fields []attendance.Field) bool {
	for _, f := range fields {
		if dirty[f] {
			return true
		}
	}
	return false
}

func checkNonNegative(overrides attendance.Overrides) error {
	var errs validator.ValidationErrors
	for _, field := range attendance.Fields {
		value, ok := overrides[field]
		if ok && value.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: string(field), Message: "must be non-negative"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
