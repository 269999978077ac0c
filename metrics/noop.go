package metrics

import (
	"context"
	"time"
)

// Noop is a Recorder that does nothing.
type Noop struct{}

// Compile-time interface check.
var _ Recorder = Noop{}

// RecordParse does nothing.
func (Noop) RecordParse(_ context.Context, _ time.Duration, _ error) {}

// RecordCompile does nothing.
func (Noop) RecordCompile(_ context.Context, _ time.Duration, _ error) {}

// RecordEval does nothing.
func (Noop) RecordEval(_ context.Context, _ time.Duration, _ error) {}

// RecordCache does nothing.
func (Noop) RecordCache(_ context.Context, _ bool) {}
