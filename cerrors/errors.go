// Package cerrors defines the error taxonomy shared by every connector
// package. Every exported error is a *Error carrying a Kind, the offending
// identifier(s) and a cause chain that survives errors.Is/errors.As.
package cerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why an operation failed.
type Kind int

const (
	KindIdentifier Kind = iota
	KindGeometry
	KindSchema
	KindInvariant
	KindPersistence
	KindCollaborator
)

func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindGeometry:
		return "geometry"
	case KindSchema:
		return "schema"
	case KindInvariant:
		return "invariant"
	case KindPersistence:
		return "persistence"
	case KindCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

// Error is the single error type used across this module. Id is the
// offending row/vertex/edge identifier, if any; Cause is wrapped so that
// errors.Unwrap reaches the underlying error. stack carries a captured call
// stack (github.com/pkg/errors, the same package the teacher wraps every
// returned error with) so a %+v log of a fatal cerrors.Error still prints a
// trace back to where it originated, not just to where it was last wrapped.
type Error struct {
	Kind    Kind
	Id      string
	Message string
	Cause   error
	stack   errors.StackTrace
}

func (e *Error) Error() string {
	if e.Id != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s error for %q: %s: %s", e.Kind, e.Id, e.Message, e.Cause)
		}
		return fmt.Sprintf("%s error for %q: %s", e.Kind, e.Id, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %s", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Format implements fmt.Formatter so that sigolo's "%+v" fatal/error log
// lines (the pattern the teacher uses throughout its index and importing
// packages) print a stack trace under the message instead of just the
// message.
func (e *Error) Format(s fmt.State, verb rune) {
	switch {
	case verb == 'v' && s.Flag('+'):
		_, _ = fmt.Fprint(s, e.Error())
		for _, frame := range e.stack {
			_, _ = fmt.Fprintf(s, "\n%+v", frame)
		}
	default:
		_, _ = fmt.Fprint(s, e.Error())
	}
}

func stackTrace() errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if st, ok := errors.WithStack(fmt.Errorf("")).(stackTracer); ok {
		trace := st.StackTrace()
		if len(trace) > 2 {
			return trace[2:]
		}
		return trace
	}
	return nil
}

func New(kind Kind, id string, format string, args ...any) *Error {
	return &Error{Kind: kind, Id: id, Message: fmt.Sprintf(format, args...), stack: stackTrace()}
}

func Wrap(kind Kind, id string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Id: id, Message: fmt.Sprintf(format, args...), Cause: cause, stack: stackTrace()}
}

// Is lets callers test for a kind via errors.Is(err, cerrors.Sentinel(KindX))
// comparisons against a zero-value sentinel of the same kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinel returns a comparison target for errors.Is(err, cerrors.Sentinel(KindX)).
func Sentinel(kind Kind) error {
	return &Error{Kind: kind}
}
