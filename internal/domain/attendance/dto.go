package attendance

import (
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Overrides is a parsed operator override set: final field -> value.
type Overrides map[Field]decimal.Decimal

// RawOverrides is an override set as typed by the operator, before parsing.
type RawOverrides map[Field]string

// Derivation is the result of running the recalculation cascade on a record.
type Derivation struct {
	EmployeeID  string           `json:"employee_id"`
	Final       AttendanceFields `json:"final"`
	Recomputed  []Field          `json:"recomputed"`
	Valid       bool             `json:"valid"`
	Message     string           `json:"message,omitempty"`
	DaysInMonth int              `json:"days_in_month"`
	Violation   *InvariantError  `json:"-"`
}

// ProcessResult is returned by attendance processing for a period.
type ProcessResult struct {
	Month       int                 `json:"month"`
	Year        int                 `json:"year"`
	DaysInMonth int                 `json:"days_in_month"`
	Saved       bool                `json:"saved"`
	Records     []AttendanceSummary `json:"records"`
}

type RecalculateRequest struct {
	Month     int               `json:"month"`
	Year      int               `json:"year"`
	Record    AttendanceSummary `json:"record"`
	Overrides RawOverrides      `json:"overrides"`
}

func (r *RecalculateRequest) Validate() error {
	errs := validator.PeriodErrors(r.Month, r.Year)

	if validator.IsEmpty(r.Record.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "record.employee_id", Message: "is required"})
	}
	for field := range r.Overrides {
		if !field.Valid() {
			errs = append(errs, validator.ValidationError{Field: "overrides." + string(field), Message: "unknown field"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SaveSummaryRequest struct {
	Month   int                 `json:"month"`
	Year    int                 `json:"year"`
	Records []AttendanceSummary `json:"records"`
}

func (r *SaveSummaryRequest) Validate() error {
	errs := validator.PeriodErrors(r.Month, r.Year)

	if len(r.Records) == 0 {
		errs = append(errs, validator.ValidationError{Field: "records", Message: "at least one record is required"})
	}
	for i, rec := range r.Records {
		if validator.IsEmpty(rec.EmployeeID) {
			errs = append(errs, validator.ValidationError{Field: "records[" + validator.Itoa(i) + "].employee_id", Message: "is required"})
		}
		for _, field := range Fields {
			if rec.Final.Get(field).IsNegative() {
				errs = append(errs, validator.ValidationError{
					Field:   "records[" + validator.Itoa(i) + "].final." + string(field),
					Message: "must be non-negative",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
