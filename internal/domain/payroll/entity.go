package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus is the lifecycle state of a payroll period.
// A period that does not exist is the initial state.
type PeriodStatus string

const (
	PeriodStatusDraft      PeriodStatus = "DRAFT"
	PeriodStatusProcessing PeriodStatus = "PROCESSING"
	PeriodStatusCompleted  PeriodStatus = "COMPLETED"
)

// PayrollPeriod - one company month going through closing
type PayrollPeriod struct {
	ID          string       `json:"id"`
	CompanyID   string       `json:"company_id"`
	Month       int          `json:"month"`
	Year        int          `json:"year"`
	Status      PeriodStatus `json:"status"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ProcessType enum
type ProcessType string

const (
	ProcessTypeFull    ProcessType = "FULL"
	ProcessTypePartial ProcessType = "PARTIAL"
)

// RunStatus enum
type RunStatus string

const (
	RunStatusInProgress          RunStatus = "IN_PROGRESS"
	RunStatusCompleted           RunStatus = "COMPLETED"
	RunStatusCompletedWithErrors RunStatus = "COMPLETED_WITH_ERRORS"
	RunStatusFailed              RunStatus = "FAILED"
	RunStatusCancelled           RunStatus = "CANCELLED"
)

// Succeeded reports whether the run produced totals.
func (s RunStatus) Succeeded() bool {
	return s == RunStatusCompleted || s == RunStatusCompletedWithErrors
}

// RunError - per-employee failure inside a run
type RunError struct {
	EmployeeID string `json:"employee_id"`
	Message    string `json:"message"`
}

// ProcessingRun - one payroll processing attempt. Runs are append-only.
type ProcessingRun struct {
	ID                 string          `json:"id"`
	CompanyID          string          `json:"company_id"`
	Month              int             `json:"month"`
	Year               int             `json:"year"`
	ProcessType        ProcessType     `json:"process_type"`
	Status             RunStatus       `json:"status"`
	EmployeeIDs        []string        `json:"employee_ids,omitempty"`
	EmployeesProcessed int             `json:"employees_processed"`
	GrossPay           decimal.Decimal `json:"gross_pay"`
	Deductions         decimal.Decimal `json:"deductions"`
	NetPay             decimal.Decimal `json:"net_pay"`
	Lines              []PayLine       `json:"lines,omitempty"`
	Errors             []RunError      `json:"errors,omitempty"`
	ErrorMessage       *string         `json:"error_message,omitempty"`
	StartedBy          *string         `json:"started_by,omitempty"`
	StartedAt          time.Time       `json:"started_at"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
}

// PayrollSettings - Company payroll configuration
type PayrollSettings struct {
	ID                           string
	CompanyID                    string
	LateDeductionEnabled         bool
	LateDeductionPerMinute       decimal.Decimal
	OvertimeEnabled              bool
	OvertimePayPerMinute         decimal.Decimal
	EarlyLeaveDeductionEnabled   bool
	EarlyLeaveDeductionPerMinute decimal.Decimal
	CreatedAt                    time.Time
	UpdatedAt                    time.Time
}

// ComponentType enum
type ComponentType string

const (
	ComponentTypeAllowance ComponentType = "allowance"
	ComponentTypeDeduction ComponentType = "deduction"
)

// Component - an active payroll component assigned to an employee
type Component struct {
	Name   string
	Type   ComponentType
	Amount decimal.Decimal
}

// Compensation - what the calculator needs to know about one employee's pay
type Compensation struct {
	EmployeeID string
	BaseSalary *decimal.Decimal
	Components []Component
}

// PayLine - computed pay of one employee in a run
type PayLine struct {
	EmployeeID      string                     `json:"employee_id"`
	BaseSalary      decimal.Decimal            `json:"base_salary"`
	ProratedSalary  decimal.Decimal            `json:"prorated_salary"`
	Allowances      decimal.Decimal            `json:"allowances"`
	AllowanceDetail map[string]decimal.Decimal `json:"allowance_detail,omitempty"`
	OvertimeAmount  decimal.Decimal            `json:"overtime_amount"`
	LateDeduction   decimal.Decimal            `json:"late_deduction"`
	EarlyLeave      decimal.Decimal            `json:"early_leave_deduction"`
	OtherDeductions decimal.Decimal            `json:"other_deductions"`
	DeductionDetail map[string]decimal.Decimal `json:"deduction_detail,omitempty"`
	Gross           decimal.Decimal            `json:"gross"`
	Deductions      decimal.Decimal            `json:"deductions"`
	Net             decimal.Decimal            `json:"net"`
}
