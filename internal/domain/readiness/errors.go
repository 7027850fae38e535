package readiness

import "errors"

var (
	// ErrReadinessUnavailable is reported when the prerequisite checks could not be obtained
	ErrReadinessUnavailable = errors.New("readiness report unavailable")
	ErrCheckerStatus        = errors.New("readiness service returned an unexpected status")
)
