package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
)

// ========== PERIOD DTOs ==========

type CreatePeriodRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *CreatePeriodRequest) Validate() error {
	if errs := validator.PeriodErrors(r.Month, r.Year); len(errs) > 0 {
		return errs
	}
	return nil
}

// PeriodResponse is the read model of a period with its latest run.
type PeriodResponse struct {
	Period    *PayrollPeriod `json:"period"`
	LatestRun *ProcessingRun `json:"latest_run,omitempty"`
}

// ========== ATTENDANCE DTOs ==========

type SaveSummaryResult struct {
	Period       PayrollPeriod `json:"period"`
	RecordsSaved int           `json:"records_saved"`
}

// ========== RUN DTOs ==========

type ProcessPayrollRequest struct {
	Month       int         `json:"month"`
	Year        int         `json:"year"`
	ProcessType ProcessType `json:"process_type"`
	EmployeeIDs []string    `json:"employee_ids,omitempty"`
}

func (r *ProcessPayrollRequest) Validate() error {
	errs := validator.PeriodErrors(r.Month, r.Year)

	switch r.ProcessType {
	case ProcessTypeFull:
	case ProcessTypePartial:
		if len(r.EmployeeIDs) == 0 {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "at least one employee is required for a partial run"})
		}
		for i, id := range r.EmployeeIDs {
			if validator.IsEmpty(id) {
				errs = append(errs, validator.ValidationError{Field: "employee_ids[" + validator.Itoa(i) + "]", Message: "is required"})
			}
		}
	default:
		errs = append(errs, validator.ValidationError{Field: "process_type", Message: "must be 'FULL' or 'PARTIAL'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CleanPeriodRequest struct {
	Month   int  `json:"month"`
	Year    int  `json:"year"`
	Confirm bool `json:"confirm"`
}

func (r *CleanPeriodRequest) Validate() error {
	if errs := validator.PeriodErrors(r.Month, r.Year); len(errs) > 0 {
		return errs
	}
	if !r.Confirm {
		return ErrCleanNotConfirmed
	}
	return nil
}

// CleanResult reports what a clean removed. A second clean reports zeros.
type CleanResult struct {
	Month            int   `json:"month"`
	Year             int   `json:"year"`
	SummariesDeleted int64 `json:"summaries_deleted"`
	RunsDeleted      int64 `json:"runs_deleted"`
	PeriodsDeleted   int64 `json:"periods_deleted"`
}

// ========== CALCULATOR DTOs ==========

type CalculationInput struct {
	CompanyID string
	Month     int
	Year      int
	Summaries []attendance.AttendanceSummary
}

type CalculationResult struct {
	Lines  []PayLine
	Errors []RunError
}
