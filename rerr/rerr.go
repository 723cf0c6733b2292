// Package rerr classifies errors that cross the Source Runtime boundary into
// the kinds callers are expected to branch on.
package rerr

import (
	"context"
	"errors"
	"fmt"
)

// Kind distinguishes the handful of error categories the runtime surfaces to
// its callers, independent of the underlying cause.
type Kind int

const (
	// Other is any I/O, parse, or logic fault that doesn't fit elsewhere.
	Other Kind = iota
	// GuestTrap means an import returned a trap or the guest aborted.
	GuestTrap
	// ProtocolViolation means a source broke the ABI's contract (a malformed
	// archive, a missing export, malformed page data). It reaches callers as
	// its own kind; nothing converts it to GuestTrap.
	ProtocolViolation
	// NetworkFailure covers a negative connectivity probe, a transport
	// error, or a non-2xx response on an image fetch.
	NetworkFailure
	// Cancelled means the caller's context was cancelled; not an error to
	// show the user.
	Cancelled
	// NotFound means a source id, manga, or chapter does not exist.
	NotFound
	// StorageFull means Chapter Storage could not evict enough to fit.
	StorageFull
)

func (k Kind) String() string {
	switch k {
	case GuestTrap:
		return "guest trap"
	case ProtocolViolation:
		return "protocol violation"
	case NetworkFailure:
		return "network failure"
	case Cancelled:
		return "cancelled"
	case NotFound:
		return "not found"
	case StorageFull:
		return "storage full"
	default:
		return "other"
	}
}

// Error wraps an underlying cause with a Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports Cancelled errors as equivalent to context.Canceled so that
// errors.Is(err, context.Canceled) keeps working after wrapping.
func (e *Error) Is(target error) bool {
	if e.Kind == Cancelled && target == context.Canceled {
		return true
	}
	return false
}

// New wraps err with kind. If err is nil, New returns nil.
func New(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Newf builds an Error from a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// As reports whether err (or any error it wraps) is a *Error and returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or Other if err is not a *Error and not
// context.Canceled.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return Cancelled
	}
	return Other
}
