/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Input errors - Malformed shift times, unknown rule types
  2. Configuration errors - Missing or invalid company settings
  3. Store errors - Missing records, closed periods

SEVERITY:
  ErrInvalidTimeFormat   Per shift. The shift is excluded from the summary.
  ErrInvalidReference    Per rule. The benefit or deduction contributes nothing.
  ErrMissingConfiguration, ErrInvalidConfiguration
                         Fatal. No summary is produced.

USAGE:
    if errors.Is(err, generic.ErrMissingConfiguration) {
        // ask the company to configure payroll first
    }

SEE ALSO:
  - payroll/classifier.go: Returns InvalidTimeError
  - payroll/aggregator.go: Collects per-shift errors as diagnostics
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTimeFormat is returned when a shift time is not a valid HH:MM value.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrMissingConfiguration is returned when a company has no payroll settings.
	ErrMissingConfiguration = errors.New("missing payroll configuration")

	// ErrInvalidConfiguration is returned when settings hold out-of-range values.
	ErrInvalidConfiguration = errors.New("invalid payroll configuration")

	// ErrInvalidReference is returned for benefits or deductions with an unknown type.
	ErrInvalidReference = errors.New("invalid rule reference")

	// ErrInvalidPeriod is returned when a period is malformed.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrPeriodClosed is returned when editing a shift in an already closed payroll period.
	ErrPeriodClosed = errors.New("payroll period is closed")

	// ErrAlreadyClosed is returned when closing a payroll period twice.
	ErrAlreadyClosed = errors.New("payroll period already closed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidTimeError names the offending field and value.
type InvalidTimeError struct {
	Field string // start_time or end_time
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time format: %s=%q (want HH:MM)", e.Field, e.Value)
}

func (e *InvalidTimeError) Unwrap() error {
	return ErrInvalidTimeFormat
}

// InvalidConfigurationError names the settings field that was rejected.
type InvalidConfigurationError struct {
	Field string
	Value string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid payroll configuration: %s=%q", e.Field, e.Value)
}

func (e *InvalidConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// InvalidReferenceError describes a benefit or deduction that was ignored.
type InvalidReferenceError struct {
	Kind string // benefit or deduction
	ID   string
	Name string
	Type string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("unknown %s type %q on %q (%s), ignored", e.Kind, e.Type, e.Name, e.ID)
}

func (e *InvalidReferenceError) Unwrap() error {
	return ErrInvalidReference
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTimeFormat) ||
		errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsConfigurationError returns true if the company's settings prevent computation.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingConfiguration) ||
		errors.Is(err, ErrInvalidConfiguration)
}

// IsConflict returns true if the error comes from a closed payroll period.
func IsConflict(err error) bool {
	return errors.Is(err, ErrPeriodClosed) ||
		errors.Is(err, ErrAlreadyClosed)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
