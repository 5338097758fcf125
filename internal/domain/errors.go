package domain

import (
	"errors"
	"fmt"
)

// ValidationError marks a malformed email, TLD or leak line. Always
// recoverable: the caller skips the unit and continues.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	if e.Reason == "" {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel error for malformed input.
var ErrValidation = ValidationError{}

// ProviderError wraps a network or API failure from the breach-data
// provider. Recoverable at record granularity: the current record is
// abandoned, the run continues.
type ProviderError struct {
	Op  string
	Err error
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

func (e ProviderError) Unwrap() error { return e.Err }

// Is enables errors.Is matching on ProviderError.
func (e ProviderError) Is(target error) bool {
	_, ok := target.(ProviderError)
	if ok {
		return true
	}
	_, ok = target.(*ProviderError)
	return ok
}

// ErrProvider is the sentinel error for provider failures.
var ErrProvider = ProviderError{}

var (
	// ErrUnknownTLD means a TLD was absent from the registry even after the
	// sanitized retry. The affected line is skipped.
	ErrUnknownTLD = errors.New("unknown tld")

	// ErrPersistence means a constraint race exhausted its retries or the
	// storage engine misbehaved. A genuine anomaly, surfaced to the operator.
	ErrPersistence = errors.New("persistence failed")

	// ErrNotFound marks a missing resource.
	ErrNotFound = errors.New("not found")
)
