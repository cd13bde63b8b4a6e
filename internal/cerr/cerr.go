// Package cerr implements the structured error taxonomy used across the
// cradle engine: every error carries a Kind, labelled attachments (the
// offending id, expected/actual shapes, the underlying library message),
// and a stack trace captured at the point it was raised.
package cerr

import (
	"fmt"
	"runtime"
	"strings"
)

// Kind classifies an error per the taxonomy.
type Kind string

const (
	Canceled                   Kind = "canceled"
	Transport                  Kind = "transport"
	Protocol                   Kind = "protocol"
	Parse                      Kind = "parse"
	TypeMismatch               Kind = "type_mismatch"
	IndexOutOfBounds           Kind = "index_out_of_bounds"
	ArraySizeMismatch          Kind = "array_size_mismatch"
	MissingEnvironmentVariable Kind = "missing_environment_variable"
	MissingErrorInfo           Kind = "missing_error_info"
	OpenFile                   Kind = "open_file"
	DirectoryCreation          Kind = "directory_creation"
	InternalCheckFailed        Kind = "internal_check_failed"
	CompressionError           Kind = "compression_error"
	WebSocketError             Kind = "websocket_error"
)

// Error is the structured error type propagated through the engine.
type Error struct {
	Kind        Kind
	Message     string
	Attachments map[string]any
	cause       error
	stack       []uintptr
}

// New constructs an Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:        kind,
		Message:     message,
		Attachments: map[string]any{},
		stack:       captureStack(),
	}
}

// Wrap wraps an underlying error with a Kind and message, preserving
// Unwrap() so callers can still errors.Is/As through to cause.
func Wrap(kind Kind, cause error, message string) *Error {
	e := New(kind, message)
	e.cause = cause
	return e
}

// With attaches a labelled value and returns the receiver for chaining.
func (e *Error) With(label string, value any) *Error {
	if e.Attachments == nil {
		e.Attachments = map[string]any{}
	}
	e.Attachments[label] = value
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	for _, label := range sortedKeys(e.Attachments) {
		fmt.Fprintf(&b, " [%s=%v]", label, e.Attachments[label])
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

// Stack renders the captured call stack, one frame per line.
func (e *Error) Stack() string {
	frames := runtime.CallersFrames(e.stack)
	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	if ce, ok := err.(*Error); ok {
		return ce.Kind == kind
	}
	return false
}

func captureStack() []uintptr {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	return pcs[:n]
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// small maps; simple insertion sort keeps error text deterministic
	// for tests without importing sort for a handful of elements.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// CheckIndexBounds reports an IndexOutOfBounds error iff i >= upperBound.
func CheckIndexBounds(label string, i, upperBound int) error {
	if i >= upperBound {
		return New(IndexOutOfBounds, "index out of bounds").
			With("label", label).With("index", i).With("upper_bound", upperBound)
	}
	return nil
}

// CheckArraySize reports an ArraySizeMismatch error iff expected != actual.
func CheckArraySize(expected, actual int) error {
	if expected != actual {
		return New(ArraySizeMismatch, "array size mismatch").
			With("expected", expected).With("actual", actual)
	}
	return nil
}
