package opportunity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrProviderUnavailable covers non-success statuses, network failures,
	// timeouts and missing credentials for a single provider.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrParseFailure covers malformed or unexpected provider payloads.
	ErrParseFailure = errors.New("provider response could not be parsed")
	// ErrNoResults marks a provider call that succeeded with zero records.
	ErrNoResults = errors.New("provider returned no results")
	// ErrAllProvidersExhausted matches any *AllProvidersExhaustedError.
	ErrAllProvidersExhausted = errors.New("all providers failed")
)

// Attempt records one provider tried by a fallback chain.
type Attempt struct {
	Source string
	Err    error
}

// AllProvidersExhaustedError is raised when every candidate in a fallback
// chain failed or returned nothing.
type AllProvidersExhaustedError struct {
	Attempts []Attempt
}

func (e *AllProvidersExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrAllProvidersExhausted.Error() + ": no providers configured"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		msg := fmt.Sprint(a.Err)
		// Adapter errors already lead with their source name.
		if !strings.HasPrefix(msg, a.Source+":") {
			msg = a.Source + ": " + msg
		}
		parts = append(parts, msg)
	}
	return ErrAllProvidersExhausted.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is match the ErrAllProvidersExhausted sentinel.
func (e *AllProvidersExhaustedError) Is(target error) bool {
	return target == ErrAllProvidersExhausted
}

// Unwrap exposes each candidate's cause.
func (e *AllProvidersExhaustedError) Unwrap() []error {
	out := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			out = append(out, a.Err)
		}
	}
	return out
}
