// Package fault classifies inspector failures and reports them through a
// single path: one structured log record and, depending on verbosity, one
// user-visible notice per failure.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by the stage that produced it.
type Kind int

const (
	// InputValidation: user-supplied control text is not a valid number.
	InputValidation Kind = iota + 1
	// SnapshotAccess: the live scene is unavailable or a lookup failed.
	SnapshotAccess
	// Presentation: a presenter could not read an expected attribute.
	Presentation
	// Dispatch: the playback sink rejected or failed a command.
	Dispatch
)

func (k Kind) String() string {
	switch k {
	case InputValidation:
		return "input_validation"
	case SnapshotAccess:
		return "snapshot_access"
	case Presentation:
		return "presentation"
	case Dispatch:
		return "dispatch"
	}
	return "unknown"
}

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf returns a classified error with a formatted cause.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromPanic converts a recovered panic value into a classified error.
func FromPanic(kind Kind, op string, r any) *Error {
	if err, ok := r.(error); ok {
		return New(kind, op, fmt.Errorf("panic: %w", err))
	}
	return Errorf(kind, op, "panic: %v", r)
}
