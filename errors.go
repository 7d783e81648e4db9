package httpcache

import (
	"errors"
	"fmt"
)

// Kind enumerates the taxonomy of errors the engine can surface, per
// spec.md section 7.
type Kind int

const (
	// KindBadVersion signals an HTTP version outside the supported set.
	KindBadVersion Kind = iota
	// KindBadHeader signals a malformed header name or value encountered during conversion.
	KindBadHeader
	// KindStorageFailure signals that the underlying Manager failed.
	KindStorageFailure
	// KindAdapterFailure signals a network or client adapter failure.
	KindAdapterFailure
	// KindPolicyFailure signals that the policy helper returned an inconsistent result.
	KindPolicyFailure
)

func (k Kind) String() string {
	switch k {
	case KindBadVersion:
		return "bad_version"
	case KindBadHeader:
		return "bad_header"
	case KindStorageFailure:
		return "storage_failure"
	case KindAdapterFailure:
		return "adapter_failure"
	case KindPolicyFailure:
		return "policy_failure"
	default:
		return "unknown"
	}
}

// Error is the engine's single error type: a Kind tag plus the wrapped
// cause. It implements Unwrap so callers can use errors.Is/errors.As
// against the wrapped cause.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("httpcache: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind, allowing
// callers to write errors.Is(err, httpcache.KindKey(httpcache.KindStorageFailure)).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// KindKey returns a sentinel *Error carrying only a Kind, for use with
// errors.Is(err, httpcache.KindKey(httpcache.KindStorageFailure)).
func KindKey(kind Kind) error {
	return &Error{Kind: kind, Err: errors.New(kind.String())}
}

// errKind returns the Kind of err if it is (or wraps) an *Error, and
// false otherwise.
func errKind(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
