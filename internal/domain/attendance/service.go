package attendance

import (
	"context"
)

// SummaryService exposes the recalculation cascade to the workflow.
type SummaryService interface {
	// Recalculate applies operator overrides to a record and returns the derived final fields
	Recalculate(ctx context.Context, req RecalculateRequest) (Derivation, error)

	// Prepare builds an unsaved summary from freshly computed base figures. The
	// derived hour categories of the base group are filled in and the final
	// group starts as a copy of it.
	Prepare(companyID string, month, year int, profile ShiftProfile, base BaseRecord) (AttendanceSummary, error)

	// Finalize verifies every record of a set and reports all invariant violations.
	// Base figures and shift profiles are reloaded; records carry only final values and remarks.
	Finalize(ctx context.Context, month, year int, records []AttendanceSummary) ([]AttendanceSummary, error)
}
