package pkg

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a flat chain of errors, innermost first.
type Error []error

// ErrDefinition is returned when a variable definition is malformed.
var ErrDefinition = MakeErrorf("invalid variable definition")

// MakeError constructs an Error from the given errors, flattening any
// chains they carry. Nil errors are skipped.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the chain with ": ", innermost first.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range e {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap appends errs to a copy of the chain.
func (e Error) Wrap(errs ...error) Error {
	return append(e[:len(e):len(e)], errs...)
}

// Wrapf appends a formatted error to a copy of the chain.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Is reports whether target is an Error whose chain begins e's, so chains
// built with Wrap from a sentinel match it.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i := range t {
		if !errors.Is(e[i], t[i]) {
			return false
		}
	}

	return true
}

// Unwrap returns the errors in the chain.
func (e Error) Unwrap() []error {
	return e
}

// UnwrapErrors flattens err and everything it wraps, innermost first.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	var chain Error

	switch e := err.(type) {
	case interface{ Unwrap() []error }:
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	case interface{ Unwrap() error }:
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
