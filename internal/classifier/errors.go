package classifier

import "errors"

// Errors produced inside the classification pipeline. Service.Classify
// absorbs both; they never reach task lifecycle callers.
var (
	// ErrUnavailable covers a disabled configuration, network or timeout
	// errors, non-success endpoint responses and empty bodies.
	ErrUnavailable = errors.New("classification unavailable")

	// ErrNoStructuredPayload is returned when model output holds no parsable
	// JSON object.
	ErrNoStructuredPayload = errors.New("no structured payload in model output")
)
