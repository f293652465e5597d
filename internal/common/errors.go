package common

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - use errors.Is() to check
var (
	// Generic errors
	ErrNotFound = errors.New("not found")
	ErrLocked   = errors.New("locked by another run")

	// Remote repository errors
	ErrRemote            = errors.New("remote call failed")
	ErrProjectNotFound   = fmt.Errorf("project %w", ErrNotFound)
	ErrFieldLookup       = errors.New("custom field lookup failed")
	ErrSuiteUnresolvable = errors.New("suite path unresolvable")

	// Validation errors
	ErrValidation = errors.New("validation error")
)

// ValidationError represents a validation error with field details
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is implements errors.Is for ValidationError
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RemoteError is an error struct returned by the test repository itself.
type RemoteError struct {
	Method  string
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: remote error %d: %s", e.Method, e.Code, e.Message)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// FieldLookupError reports a custom field whose value could not be fetched.
type FieldLookupError struct {
	Field      string
	ExternalID string
	Err        error
}

func (e *FieldLookupError) Error() string {
	return fmt.Sprintf("custom field %q for %s: %v", e.Field, e.ExternalID, e.Err)
}

func (e *FieldLookupError) Is(target error) bool {
	return target == ErrFieldLookup
}

func (e *FieldLookupError) Unwrap() error {
	return e.Err
}

// SuiteResolutionError is returned when a suite's parent chain never reaches a known root.
type SuiteResolutionError struct {
	SuiteID string
	Chain   []string
	Reason  string
}

func (e *SuiteResolutionError) Error() string {
	return fmt.Sprintf("suite %s: %s (chain: %s)", e.SuiteID, e.Reason, strings.Join(e.Chain, " -> "))
}

func (e *SuiteResolutionError) Is(target error) bool {
	return target == ErrSuiteUnresolvable
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFieldLookup checks if error is a recoverable custom field failure
func IsFieldLookup(err error) bool {
	return errors.Is(err, ErrFieldLookup)
}

// IsValidation checks if error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
