package workflow

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/readiness"
	"github.com/shopspring/decimal"
)

type Stage int

const (
	StageSetup Stage = iota + 1
	StagePreChecks
	StageAttendanceProcessing
	StagePayrollProcessing
)

var stageNames = map[Stage]string{
	StageSetup:                "SETUP",
	StagePreChecks:            "PRE_CHECKS",
	StageAttendanceProcessing: "ATTENDANCE_PROCESSING",
	StagePayrollProcessing:    "PAYROLL_PROCESSING",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

type StageStatus string

const (
	StatusPending   StageStatus = "pending"
	StatusActive    StageStatus = "active"
	StatusCompleted StageStatus = "completed"
	StatusFailed    StageStatus = "failed"
	StatusDisabled  StageStatus = "disabled"
)

type StageState struct {
	Stage  Stage       `json:"stage"`
	Name   string      `json:"name"`
	Status StageStatus `json:"status"`
}

// PeriodKey identifies the month being closed.
type PeriodKey struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

type ReadinessSummary struct {
	OverallStatus   readiness.OverallStatus `json:"overall_status"`
	TotalEmployees  int                     `json:"total_employees"`
	PassedEmployees int                     `json:"passed_employees"`
	FailedChecks    []string                `json:"failed_checks,omitempty"`
	Error           string                  `json:"error,omitempty"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

// SummarizeReport keeps what stage derivation and display need from a report.
func SummarizeReport(r readiness.Report) *ReadinessSummary {
	return &ReadinessSummary{
		OverallStatus:   r.OverallStatus,
		TotalEmployees:  r.TotalEmployees,
		PassedEmployees: r.PassedEmployees,
		FailedChecks:    r.FailedChecks(),
		Error:           r.Error,
		GeneratedAt:     r.GeneratedAt,
	}
}

func (r *ReadinessSummary) ready() bool {
	return r.OverallStatus == readiness.OverallReady && r.TotalEmployees == r.PassedEmployees
}

type AttendanceState struct {
	Processed   bool `json:"processed"`
	Saved       bool `json:"saved"`
	RecordCount int  `json:"record_count"`
	DaysInMonth int  `json:"days_in_month"`
}

type RunSummary struct {
	ID                 string              `json:"id"`
	ProcessType        payroll.ProcessType `json:"process_type"`
	Status             payroll.RunStatus   `json:"status"`
	EmployeesProcessed int                 `json:"employees_processed"`
	GrossPay           decimal.Decimal     `json:"gross_pay"`
	Deductions         decimal.Decimal     `json:"deductions"`
	NetPay             decimal.Decimal     `json:"net_pay"`
	ErrorCount         int                 `json:"error_count"`
	ErrorMessage       *string             `json:"error_message,omitempty"`
	CompletedAt        *time.Time          `json:"completed_at,omitempty"`
}

func SummarizeRun(run payroll.ProcessingRun) *RunSummary {
	return &RunSummary{
		ID:                 run.ID,
		ProcessType:        run.ProcessType,
		Status:             run.Status,
		EmployeesProcessed: run.EmployeesProcessed,
		GrossPay:           run.GrossPay,
		Deductions:         run.Deductions,
		NetPay:             run.NetPay,
		ErrorCount:         len(run.Errors),
		ErrorMessage:       run.ErrorMessage,
		CompletedAt:        run.CompletedAt,
	}
}

// Outcome is the typed result of the last workflow operation.
type Outcome struct {
	Operation string            `json:"operation"`
	Success   bool              `json:"success"`
	Kind      ErrorKind         `json:"kind,omitempty"`
	Message   string            `json:"message,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	At        time.Time         `json:"at"`
}

// WorkflowState is the whole state of a closing session. It is passed into
// and returned from every workflow operation and holds nothing implicit.
type WorkflowState struct {
	Period           *PeriodKey                         `json:"period"`
	PeriodStatus     payroll.PeriodStatus               `json:"period_status,omitempty"`
	Stages           []StageState                       `json:"stages"`
	Readiness        *ReadinessSummary                  `json:"readiness,omitempty"`
	Attendance       AttendanceState                    `json:"attendance"`
	PendingOverrides map[string]attendance.RawOverrides `json:"pending_overrides,omitempty"`
	LatestRun        *RunSummary                        `json:"latest_run,omitempty"`
	InFlight         bool                               `json:"in_flight"`
	LastOutcome      *Outcome                           `json:"last_outcome,omitempty"`
}

// NewState returns the state of a freshly selected period.
func NewState(month, year int) WorkflowState {
	st := WorkflowState{Period: &PeriodKey{Month: month, Year: year}}
	st.Attendance.DaysInMonth = attendance.DaysInMonth(month, year)
	return st.WithStages()
}

// WithStages returns a copy of s with stage statuses re-derived.
func (s WorkflowState) WithStages() WorkflowState {
	s.Stages = DeriveStages(s)
	return s
}

// Status returns the derived status of stage.
func (s WorkflowState) Status(stage Stage) StageStatus {
	for _, st := range DeriveStages(s) {
		if st.Stage == stage {
			return st.Status
		}
	}
	return StatusDisabled
}
