package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// DefaultCalculator prices saved attendance with the company payroll settings
// and each employee's base salary and active payroll components.
type DefaultCalculator struct {
	compensationRepo payroll.CompensationRepository
}

func NewDefaultCalculator(compensationRepo payroll.CompensationRepository) payroll.Calculator {
	return &DefaultCalculator{compensationRepo: compensationRepo}
}

func (c *DefaultCalculator) Calculate(ctx context.Context, in payroll.CalculationInput) (payroll.CalculationResult, error) {
	settings, err := c.compensationRepo.GetSettings(ctx, in.CompanyID)
	if err != nil && !errors.Is(err, payroll.ErrPayrollSettingsNotFound) {
		return payroll.CalculationResult{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}
	// If not found, use defaults
	if errors.Is(err, payroll.ErrPayrollSettingsNotFound) {
		settings = payroll.PayrollSettings{
			LateDeductionEnabled:         true,
			LateDeductionPerMinute:       decimal.Zero,
			OvertimeEnabled:              true,
			OvertimePayPerMinute:         decimal.Zero,
			EarlyLeaveDeductionEnabled:   false,
			EarlyLeaveDeductionPerMinute: decimal.Zero,
		}
	}

	employeeIDs := make([]string, 0, len(in.Summaries))
	for _, s := range in.Summaries {
		employeeIDs = append(employeeIDs, s.EmployeeID)
	}

	// Components effective on the last day of the period
	asOf := time.Date(in.Year, time.Month(in.Month)+1, 0, 0, 0, 0, 0, time.UTC)
	comps, err := c.compensationRepo.ListCompensation(ctx, in.CompanyID, employeeIDs, asOf)
	if err != nil {
		return payroll.CalculationResult{}, fmt.Errorf("failed to get employee compensation: %w", err)
	}

	daysInMonth := decimal.NewFromInt(int64(attendance.DaysInMonth(in.Month, in.Year)))

	var result payroll.CalculationResult
	for _, sum := range in.Summaries {
		comp, ok := comps[sum.EmployeeID]
		if !ok || comp.BaseSalary == nil || comp.BaseSalary.IsZero() {
			result.Errors = append(result.Errors, payroll.RunError{
				EmployeeID: sum.EmployeeID,
				Message:    payroll.ErrEmployeeHasNoBaseSalary.Error(),
			})
			continue
		}

		f := sum.Final
		line := payroll.PayLine{
			EmployeeID:      sum.EmployeeID,
			BaseSalary:      *comp.BaseSalary,
			AllowanceDetail: make(map[string]decimal.Decimal),
			DeductionDetail: make(map[string]decimal.Decimal),
		}

		line.ProratedSalary = comp.BaseSalary.Mul(f.PayableDays).Div(daysInMonth).Round(2)

		for _, component := range comp.Components {
			if component.Type == payroll.ComponentTypeAllowance {
				line.Allowances = line.Allowances.Add(component.Amount)
				line.AllowanceDetail[component.Name] = component.Amount
			} else {
				line.OtherDeductions = line.OtherDeductions.Add(component.Amount)
				line.DeductionDetail[component.Name] = component.Amount
			}
		}

		if settings.OvertimeEnabled {
			line.OvertimeAmount = f.OTHours.Mul(sixty).Mul(settings.OvertimePayPerMinute).Round(2)
		}
		if settings.LateDeductionEnabled {
			line.LateDeduction = f.LateMinutes.Mul(settings.LateDeductionPerMinute).Round(2)
		}
		if settings.EarlyLeaveDeductionEnabled {
			line.EarlyLeave = f.ShortHours.Mul(sixty).Mul(settings.EarlyLeaveDeductionPerMinute).Round(2)
		}

		line.Gross = line.ProratedSalary.Add(line.Allowances).Add(line.OvertimeAmount)
		line.Deductions = line.LateDeduction.Add(line.EarlyLeave).Add(line.OtherDeductions)
		line.Net = line.Gross.Sub(line.Deductions)

		result.Lines = append(result.Lines, line)
	}

	return result, nil
}
