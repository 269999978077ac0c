package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
	ErrInvalidName  = errors.New("invalid variable name")
	ErrUsage        = errors.New("usage")
)
