package validator

import (
	"strconv"
	"strings"
)

// MinPeriodYear is the first year payroll periods can be opened for.
const MinPeriodYear = 2020

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// PeriodErrors validates a payroll period month/year pair.
func PeriodErrors(month, year int) ValidationErrors {
	var errs ValidationErrors
	if month < 1 || month > 12 {
		errs = append(errs, ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if year < MinPeriodYear {
		errs = append(errs, ValidationError{Field: "year", Message: "must be " + Itoa(MinPeriodYear) + " or later"})
	}
	return errs
}

// Itoa converts an integer to a string.
func Itoa(i int) string {
	return strconv.Itoa(i)
}
