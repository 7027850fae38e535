package attendance

import (
	"testing"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func eightHourShift(eligible bool) attendance.ShiftProfile {
	return attendance.ShiftProfile{
		EmployeeID:         "emp-1",
		StandardDailyHours: d("8"),
		OvertimeEligible:   eligible,
	}
}

func febRecord() attendance.AttendanceFields {
	var f attendance.AttendanceFields
	f.PresentDays = d("20")
	f.WeeklyOffDays = d("8")
	f.HolidayDays = d("1")
	f.PayableDays = d("29")
	f.WorkHours = d("160")
	return f
}

func TestEngine_Derive_LeapFebruaryAtCeiling(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Derive(DerivationInput{
		EmployeeID: "emp-1",
		Month:      2,
		Year:       2024,
		Current:    febRecord(),
		Overrides:  attendance.Overrides{attendance.FieldPresentDays: d("20")},
		Shift:      eightHourShift(false),
	})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, 29, result.DaysInMonth)
	assert.True(t, result.Final.PayableDays.Equal(d("29")))
	assert.Empty(t, result.Message)
}

func TestEngine_Derive_LeapFebruaryOverCeiling(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Derive(DerivationInput{
		EmployeeID: "emp-1",
		Month:      2,
		Year:       2024,
		Current:    febRecord(),
		Overrides:  attendance.Overrides{attendance.FieldPaidLeaveDays: d("1")},
		Shift:      eightHourShift(false),
	})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.True(t, result.Final.PayableDays.Equal(d("30")), "computed value stays visible")
	assert.Contains(t, result.Message, "30")
	assert.Contains(t, result.Message, "29")
	require.NotNil(t, result.Violation)
	assert.ErrorIs(t, result.Violation, attendance.ErrInvariantViolated)
}

func TestEngine_Derive_OvertimeFromExcessHours(t *testing.T) {
	engine := NewEngine()

	var current attendance.AttendanceFields
	current.PresentDays = d("20")
	current.PayableDays = d("20")

	result, err := engine.Derive(DerivationInput{
		EmployeeID: "emp-1",
		Month:      3,
		Year:       2024,
		Current:    current,
		Overrides:  attendance.Overrides{attendance.FieldWorkHours: d("170")},
		Shift:      eightHourShift(true),
	})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.True(t, result.Final.PayableHours.Equal(d("170")))
	assert.True(t, result.Final.RequiredHours.Equal(d("160")))
	assert.True(t, result.Final.OTHours.Equal(d("10")))
	assert.Contains(t, result.Recomputed, attendance.FieldOTHours)
}

func TestEngine_Derive_IneligibleShiftKeepsOvertime(t *testing.T) {
	engine := NewEngine()

	current := febRecord()
	current.OTHours = d("4")

	result, err := engine.Derive(DerivationInput{
		EmployeeID: "emp-1",
		Month:      2,
		Year:       2024,
		Current:    current,
		Overrides:  attendance.Overrides{attendance.FieldWorkHours: d("200")},
		Shift:      eightHourShift(false),
	})
	require.NoError(t, err)

	assert.True(t, result.Final.OTHours.Equal(d("4")))
	assert.NotContains(t, result.Recomputed, attendance.FieldOTHours)
}

func TestEngine_Derive_EligibleWithoutExcessKeepsOvertime(t *testing.T) {
	engine := NewEngine()

	current := febRecord()
	current.OTHours = d("2")

	result, err := engine.Derive(DerivationInput{
		EmployeeID: "emp-1",
		Month:      2,
		Year:       2024,
		Current:    current,
		Overrides:  attendance.Overrides{attendance.FieldWorkHours: d("100")},
		Shift:      eightHourShift(true),
	})
	require.NoError(t, err)

	assert.True(t, result.Final.OTHours.Equal(d("2")))
}

func TestEngine_Derive_CategoryHours(t *testing.T) {
	engine := NewEngine()

	var current attendance.AttendanceFields
	current.PresentDays = d("18")
	current.WorkHours = d("144")

	result, err := engine.Derive(DerivationInput{
		EmployeeID: "emp-1",
		Month:      4,
		Year:       2024,
		Current:    current,
		Overrides: attendance.Overrides{
			attendance.FieldWeeklyOffDays:   d("8"),
			attendance.FieldHolidayDays:     d("1"),
			attendance.FieldPaidLeaveDays:   d("2"),
			attendance.FieldUnpaidLeaveDays: d("1"),
		},
		Shift: eightHourShift(false),
	})
	require.NoError(t, err)

	f := result.Final
	assert.True(t, f.PayableDays.Equal(d("30")))
	assert.True(t, f.WeeklyOffHours.Equal(d("64")))
	assert.True(t, f.HolidayHours.Equal(d("8")))
	assert.True(t, f.PaidLeaveHours.Equal(d("16")))
	assert.True(t, f.UnpaidLeaveHours.Equal(d("8")))
	// unpaid leave hours stay out of the payable total
	assert.True(t, f.PayableHours.Equal(d("232")))
	assert.True(t, f.RequiredHours.Equal(d("240")))
	assert.True(t, result.Valid)
}

func TestEngine_Derive_NonTriggerOverridePassesThrough(t *testing.T) {
	engine := NewEngine()

	current := febRecord()
	current.PayableHours = d("160")

	result, err := engine.Derive(DerivationInput{
		EmployeeID: "emp-1",
		Month:      2,
		Year:       2024,
		Current:    current,
		Overrides: attendance.Overrides{
			attendance.FieldLateMinutes: d("45"),
			attendance.FieldShortHours:  d("1.5"),
		},
		Shift: eightHourShift(true),
	})
	require.NoError(t, err)

	assert.Empty(t, result.Recomputed)
	assert.True(t, result.Final.LateMinutes.Equal(d("45")))
	assert.True(t, result.Final.ShortHours.Equal(d("1.5")))
	assert.True(t, result.Final.PayableHours.Equal(d("160")))
}

func TestEngine_Derive_RejectsNegativeOverride(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Derive(DerivationInput{
		EmployeeID: "emp-1",
		Month:      2,
		Year:       2024,
		Current:    febRecord(),
		Overrides:  attendance.Overrides{attendance.FieldHolidayDays: d("-1")},
		Shift:      eightHourShift(false),
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "holiday_days", verrs[0].Field)
}

func TestEngine_Derive_Deterministic(t *testing.T) {
	engine := NewEngine()
	in := DerivationInput{
		EmployeeID: "emp-1",
		Month:      1,
		Year:       2025,
		Current:    febRecord(),
		Overrides: attendance.Overrides{
			attendance.FieldPresentDays: d("21.5"),
			attendance.FieldWorkHours:   d("181.25"),
		},
		Shift: eightHourShift(true),
	}

	first, err := engine.Derive(in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := engine.Derive(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEngine_Derive_FullRecompute(t *testing.T) {
	engine := NewEngine()

	var base attendance.AttendanceFields
	base.PresentDays = d("22")
	base.WeeklyOffDays = d("8")
	base.WorkHours = d("180")

	result, err := engine.Derive(DerivationInput{
		EmployeeID: "emp-1",
		Month:      1,
		Year:       2024,
		Current:    base,
		Shift:      eightHourShift(true),
		Full:       true,
	})
	require.NoError(t, err)

	assert.True(t, result.Final.PayableDays.Equal(d("30")))
	assert.True(t, result.Final.WeeklyOffHours.Equal(d("64")))
	assert.True(t, result.Final.PayableHours.Equal(d("244")))
	assert.True(t, result.Final.RequiredHours.Equal(d("240")))
	assert.True(t, result.Final.OTHours.Equal(d("4")))
}

func TestEngine_Derive_StalePayableDaysIsRecomputed(t *testing.T) {
	engine := NewEngine()

	// day counts sum to 29; the record claims 31
	current := febRecord()
	current.PayableDays = d("31")

	result, err := engine.Derive(DerivationInput{
		EmployeeID: "emp-1",
		Month:      2,
		Year:       2024,
		Current:    current,
		Overrides:  attendance.Overrides{attendance.FieldLateMinutes: d("10")},
		Shift:      eightHourShift(false),
	})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.True(t, result.Final.PayableDays.Equal(d("29")))
	assert.True(t, result.Final.RequiredHours.Equal(d("232")))
	assert.Contains(t, result.Recomputed, attendance.FieldPayableDays)
}

func TestEngine_Derive_WorkHoursOverrideChecksRecomputedDays(t *testing.T) {
	engine := NewEngine()

	// a forged value under the ceiling must not hide day counts over it
	current := febRecord()
	current.UnpaidLeaveDays = d("2")
	current.PayableDays = d("20")

	result, err := engine.Derive(DerivationInput{
		EmployeeID: "emp-1",
		Month:      2,
		Year:       2024,
		Current:    current,
		Overrides:  attendance.Overrides{attendance.FieldWorkHours: d("150")},
		Shift:      eightHourShift(true),
	})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.True(t, result.Final.PayableDays.Equal(d("31")))
	require.NotNil(t, result.Violation)
}

func TestEngine_Verify(t *testing.T) {
	engine := NewEngine()

	t.Run("corrects a stale payable days", func(t *testing.T) {
		f := febRecord()
		f.PayableDays = d("10")
		f.OTHours = d("3")

		result := engine.Verify("emp-1", 2, 2024, f)
		assert.True(t, result.Valid)
		assert.True(t, result.Final.PayableDays.Equal(d("29")))
		assert.True(t, result.Final.OTHours.Equal(d("3")))
		assert.Equal(t, []attendance.Field{attendance.FieldPayableDays}, result.Recomputed)
	})

	t.Run("flags a record over the ceiling", func(t *testing.T) {
		f := febRecord()
		f.UnpaidLeaveDays = d("1")

		result := engine.Verify("emp-1", 2, 2023, f)
		assert.False(t, result.Valid)
		assert.Equal(t, 28, result.DaysInMonth)
		assert.Contains(t, result.Message, "employee emp-1")
	})
}
