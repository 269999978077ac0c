package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrDivideByZero       = NewError("division by zero")
	ErrInvalidOperand     = NewError("invalid operand")
	ErrReadInput          = NewError("failed to read input")
	ErrIndexArity         = NewError("index count does not match dimensions")
	ErrIndexRange         = NewError("index out of range")
	ErrKeyNotFound        = NewError("key not found")
	ErrNotCallable        = NewError("value is not callable")
	ErrParamCountMismatch = NewError("parameter count mismatch")
	ErrConvert            = NewError("cannot convert value")
	ErrUnknownFormat      = NewError("unknown output format")
	ErrEvalPanic          = NewError("evaluation panicked")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the same sentinel as e.
// Copies made by Wrap and With match the sentinel they were derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.err == nil && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// SyntaxError reports malformed source text.
// Offset is the byte offset into Source where the problem was detected.
type SyntaxError struct {
	Message string
	Offset  int
	Source  string
}

func syntaxError(src string, offset int, msg string) *SyntaxError {
	return &SyntaxError{Message: msg, Offset: offset, Source: src}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %d: %s", e.Message, e.Offset, e.Source)
}

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Message),
		slog.Int("offset", e.Offset),
		slog.String("source", e.Source),
	)
}

// MissingMemberError reports that a property, field or method does not exist
// on the target type.
type MissingMemberError struct {
	Type   string
	Member string
}

func (e *MissingMemberError) Error() string {
	return "member not found: " + e.Type + "." + e.Member
}

// LogValue implements slog.LogValuer.
func (e *MissingMemberError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "member not found"),
		slog.String("type", e.Type),
		slog.String("member", e.Member),
	)
}

// NullTargetError reports a member, index or call access on a null value.
type NullTargetError struct {
	Op string
}

func (e *NullTargetError) Error() string {
	return e.Op + " target is null"
}

// LogValue implements slog.LogValuer.
func (e *NullTargetError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "null target"),
		slog.String("op", e.Op),
	)
}

// ArgumentConversionError reports that a call argument could not be converted
// to the declared parameter type.
type ArgumentConversionError struct {
	Member string
	Index  int
	From   string
	To     string
}

func (e *ArgumentConversionError) Error() string {
	return fmt.Sprintf(
		"invoke method %q: cannot convert argument #%d from %s to %s",
		e.Member, e.Index, e.From, e.To,
	)
}

// LogValue implements slog.LogValuer.
func (e *ArgumentConversionError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "cannot convert argument"),
		slog.String("member", e.Member),
		slog.Int("index", e.Index),
		slog.String("from", e.From),
		slog.String("to", e.To),
	)
}

// IncomparableValuesError reports an ordering between values that have no
// common representation.
type IncomparableValuesError struct {
	Left  string
	Right string
}

func (e *IncomparableValuesError) Error() string {
	return "cannot compare " + e.Left + " and " + e.Right
}

// LogValue implements slog.LogValuer.
func (e *IncomparableValuesError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "incomparable values"),
		slog.String("left", e.Left),
		slog.String("right", e.Right),
	)
}

// InvocationError carries the failure of an invoked host routine.
// Unwrap returns the routine's own error.
type InvocationError struct {
	Member string
	Err    error
}

func (e *InvocationError) Error() string {
	if e.Member == "" {
		return e.Err.Error()
	}

	return e.Member + ": " + e.Err.Error()
}

func (e *InvocationError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *InvocationError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "invocation failed"),
		slog.String("member", e.Member),
		slog.String("cause", e.Err.Error()),
	)
}
