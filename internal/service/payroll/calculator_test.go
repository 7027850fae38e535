package payroll

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCalculator_EarlyLeaveAndDisabledOvertime(t *testing.T) {
	store := memory.NewStore()
	store.SeedSettings(payroll.PayrollSettings{
		CompanyID:                    testCompanyID,
		LateDeductionEnabled:         false,
		LateDeductionPerMinute:       d("1000"),
		OvertimeEnabled:              false,
		OvertimePayPerMinute:         d("500"),
		EarlyLeaveDeductionEnabled:   true,
		EarlyLeaveDeductionPerMinute: d("200"),
	})
	salary := d("3100000")
	store.SeedCompensation(testCompanyID, payroll.Compensation{EmployeeID: "emp-1", BaseSalary: &salary})

	var final attendance.AttendanceFields
	final.PayableDays = d("31")
	final.OTHours = d("5")
	final.LateMinutes = d("120")
	final.ShortHours = d("1.5")

	calc := NewDefaultCalculator(memory.NewCompensationRepository(store))
	result, err := calc.Calculate(context.Background(), payroll.CalculationInput{
		CompanyID: testCompanyID,
		Month:     1,
		Year:      2024,
		Summaries: []attendance.AttendanceSummary{{EmployeeID: "emp-1", Final: final}},
	})
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	assert.Empty(t, result.Errors)

	line := result.Lines[0]
	assert.True(t, line.OvertimeAmount.IsZero())
	assert.True(t, line.LateDeduction.IsZero())
	assert.True(t, line.EarlyLeave.Equal(d("18000")), line.EarlyLeave.String())
	assert.True(t, line.Gross.Equal(d("3100000")))
	assert.True(t, line.Net.Equal(d("3082000")))
}

func TestDefaultCalculator_NoSettingsNoSalary(t *testing.T) {
	store := memory.NewStore()
	calc := NewDefaultCalculator(memory.NewCompensationRepository(store))

	result, err := calc.Calculate(context.Background(), payroll.CalculationInput{
		CompanyID: testCompanyID,
		Month:     4,
		Year:      2024,
		Summaries: []attendance.AttendanceSummary{{EmployeeID: "emp-9"}},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Lines)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, payroll.ErrEmployeeHasNoBaseSalary.Error(), result.Errors[0].Message)
}
