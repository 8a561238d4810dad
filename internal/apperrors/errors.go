// Package apperrors defines the failure taxonomy of the ingestion pipeline.
// The orchestrator classifies every failure into one of these types before
// it reaches the HTTP layer; callers match with errors.As.
package apperrors

import "fmt"

// ResolutionError means no channel could be determined from the user input.
// It carries the upstream API message when the API itself rejected the
// lookup.
type ResolutionError struct {
	Input string
	Err   error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not resolve channel %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("could not resolve channel %q", e.Input)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// NetworkError is a transport-level failure: no JSON response was obtained
// from the upstream API at all.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// QuotaError means the upstream API reported quota exhaustion.
type QuotaError struct {
	Err error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("upstream API quota exceeded: %v", e.Err)
}

func (e *QuotaError) Unwrap() error { return e.Err }

// APIKeyError means the upstream rejected the key, or the key failed basic
// format validation before any call was made.
type APIKeyError struct {
	Reason string
	Err    error
}

func (e *APIKeyError) Error() string {
	if e.Reason != "" {
		return "invalid API key: " + e.Reason
	}
	return fmt.Sprintf("invalid API key: %v", e.Err)
}

func (e *APIKeyError) Unwrap() error { return e.Err }

// NotFoundError means a channel or playlist does not exist upstream.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// RateLimitError is raised before any network call when a demo-mode usage
// ceiling has been reached.
type RateLimitError struct {
	Reason string
}

func (e *RateLimitError) Error() string {
	return "demo usage limit reached (" + e.Reason + ")"
}
