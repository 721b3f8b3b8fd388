package bridge

import (
	"errors"
	"fmt"
)

// Kind enumerates the terminal failure classes of a delivery. None are
// retried internally; the invoking infrastructure observes them.
type Kind int

const (
	// KindAuthentication is a webhook signature mismatch.
	KindAuthentication Kind = iota + 1
	// KindMissingReference means the PR body carries no Asana task URL.
	KindMissingReference
	// KindUpstream is a non-success status from the task fetch.
	KindUpstream
	// KindPolicy means the task is not on the expected board/section.
	KindPolicy
	// KindTransition wraps any error during the section/completion update.
	KindTransition
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindMissingReference:
		return "missing_reference"
	case KindUpstream:
		return "upstream"
	case KindPolicy:
		return "policy"
	case KindTransition:
		return "transition"
	default:
		return "unknown"
	}
}

// Failure is a tagged sync error.
type Failure struct {
	Kind Kind
	Msg  string
	Err  error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s, %v", f.Msg, f.Err)
	}
	return f.Msg
}

func (f *Failure) Unwrap() error { return f.Err }

// NewFailure builds a Failure without a wrapped cause.
func NewFailure(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure kind from err, or 0 if err is not a Failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}
