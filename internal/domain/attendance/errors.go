package attendance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Attendance summary domain errors
var (
	ErrInvariantViolated    = errors.New("attendance summary invariant violated")
	ErrShiftProfileNotFound = errors.New("shift profile not found for employee")
	ErrEmptySummarySet      = errors.New("attendance summary set is empty")
	ErrDuplicateEmployee    = errors.New("employee appears more than once in the summary set")
)

// InvariantError reports a record whose computed value exceeds its ceiling.
type InvariantError struct {
	EmployeeID string
	Field      Field
	Computed   decimal.Decimal
	Ceiling    decimal.Decimal
	Month      int
	Year       int
}

func (e *InvariantError) Error() string {
	msg := fmt.Sprintf("%s %s exceeds the %s calendar days of %02d/%d",
		strings.ReplaceAll(string(e.Field), "_", " "), e.Computed.String(), e.Ceiling.String(), e.Month, e.Year)
	if e.EmployeeID != "" {
		return fmt.Sprintf("employee %s: %s", e.EmployeeID, msg)
	}
	return msg
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolated
}

// InvariantViolations collects every violating record of a rejected save.
type InvariantViolations []*InvariantError

func (v InvariantViolations) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (v InvariantViolations) Is(target error) bool {
	return target == ErrInvariantViolated && len(v) > 0
}
