// Package langerr defines the error kinds the interpreter core surfaces
// (spec.md §7): IndexNil, ArithOnNonNumeric, ConcatOnNonStringNumber,
// LengthOfNil, CallNonCallable, UnknownOpcode, and HostError. Grounded on
// the teacher's internal/errors/errors.go (an ErrorType enum wrapped in a
// struct carrying a message and a source stack of frames).
package langerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind is one of the seven error kinds spec.md §7 names.
type Kind string

const (
	IndexNil               Kind = "IndexNil"
	ArithOnNonNumeric       Kind = "ArithOnNonNumeric"
	ConcatOnNonStringNumber Kind = "ConcatOnNonStringNumber"
	LengthOfNil             Kind = "LengthOfNil"
	CallNonCallable         Kind = "CallNonCallable"
	UnknownOpcode           Kind = "UnknownOpcode"
	HostError               Kind = "HostError"
)

// Frame is one synthetic stack frame appended by an activation before
// re-raising (spec.md §7: "at <sourceName> on line <line>").
type Frame struct {
	SourceName string
	Line       int
}

func (f Frame) String() string {
	return fmt.Sprintf("at %s on line %d", f.SourceName, f.Line)
}

// Error is the language-error kind carrying a message, a source-level
// stack, and (for HostError) a wrapped host error whose stack trace was
// captured by github.com/pkg/errors at the point the host error was caught.
type Error struct {
	Kind    Kind
	Message string
	Stack   []Frame

	// Host is set only for Kind == HostError: the original non-language
	// error, wrapped with errors.Wrap so %+v renders a captured stack trace
	// (spec.md §4.5: "Error in host call: …", "preserving the original
	// stack").
	Host error
}

// New creates an Error of the given kind with no stack frames yet; callers
// append frames as the error propagates up the activation chain.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapHost wraps a non-language error caught during execution, matching
// spec.md §4.5's "Error in host call: …" requirement. The wrap happens at
// the catch site so errors.Wrap captures the host stack right there.
func WrapHost(cause error) *Error {
	wrapped := errors.Wrap(cause, "Error in host call")
	return &Error{Kind: HostError, Message: wrapped.Error(), Host: wrapped}
}

// WithFrame returns a copy of e with one more synthetic frame appended
// (spec.md §7: "Each activation appends one synthetic frame … before
// re-raising").
func (e *Error) WithFrame(sourceName string, line int) *Error {
	next := *e
	next.Stack = append(append([]Frame(nil), e.Stack...), Frame{SourceName: sourceName, Line: line})
	return &next
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	for _, f := range e.Stack {
		sb.WriteString("\n  ")
		sb.WriteString(f.String())
	}
	return sb.String()
}
