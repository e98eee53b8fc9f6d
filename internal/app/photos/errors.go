package photos

import "errors"

var (
	// ErrInvalidReference: the reference is empty or too short; no attempt is made.
	ErrInvalidReference = errors.New("invalid photo reference")

	// ErrPrimaryFetchFailed: the cached endpoint failed; the fallback endpoint is tried next.
	ErrPrimaryFetchFailed = errors.New("primary photo fetch failed")

	// ErrFallbackFetchFailed: the standard endpoint failed after the primary; terminal.
	ErrFallbackFetchFailed = errors.New("fallback photo fetch failed")

	// ErrFullyQualifiedFetchFailed: a verbatim URL failed; terminal, never retried.
	ErrFullyQualifiedFetchFailed = errors.New("fully-qualified photo fetch failed")
)

// FailureReason explains a Failed state.
type FailureReason int

const (
	ReasonNone FailureReason = iota
	ReasonInvalidReference
	ReasonFallbackFetchFailed
	ReasonFullyQualifiedFetchFailed
)

func (r FailureReason) String() string {
	switch r {
	case ReasonInvalidReference:
		return "invalid_reference"
	case ReasonFallbackFetchFailed:
		return "fallback_fetch_failed"
	case ReasonFullyQualifiedFetchFailed:
		return "fully_qualified_fetch_failed"
	default:
		return "none"
	}
}

// Err returns the sentinel error for the reason, or nil for ReasonNone.
func (r FailureReason) Err() error {
	switch r {
	case ReasonInvalidReference:
		return ErrInvalidReference
	case ReasonFallbackFetchFailed:
		return ErrFallbackFetchFailed
	case ReasonFullyQualifiedFetchFailed:
		return ErrFullyQualifiedFetchFailed
	default:
		return nil
	}
}
