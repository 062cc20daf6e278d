package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel categories for the failure modes of the tracking pipeline.
// Controllers map these onto HTTP status codes; everything else just wraps
// and returns them.
var (
	// ErrValidation marks a malformed ingestion payload. Never persisted.
	ErrValidation = errors.New("validation error")
	// ErrResolution marks a device identifier the registry does not know.
	ErrResolution = errors.New("device resolution failed")
	// ErrDependency marks an unreachable upstream (registry or GPS feed).
	ErrDependency = errors.New("upstream dependency unavailable")
	// ErrNotFound marks a bus with no position data from any source.
	ErrNotFound = errors.New("not found")
	// ErrAggregation marks a failure while computing or persisting a
	// daily-stats update.
	ErrAggregation = errors.New("aggregation failed")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Resolution(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrResolution, fmt.Sprintf(format, args...))
}

func Dependency(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrDependency, context, err)
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Aggregation(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrAggregation, context, err)
}
