// Package metrics records engine activity with OpenTelemetry instruments.
//
// The engine reports through a [Recorder]. [Noop] discards everything and is
// what the engine uses unless told otherwise; [New] builds a recorder from
// any meter provider and [Default] from the global one.
package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Scope is the instrumentation scope name of every instrument.
const Scope = "lambda"

// Operation names used for the "op" attribute.
const (
	OpParse   = "parse"
	OpCompile = "compile"
	OpEval    = "eval"
)

// Recorder records engine metrics.
type Recorder interface {
	// RecordParse records one parse of source text.
	RecordParse(ctx context.Context, duration time.Duration, err error)

	// RecordCompile records one compilation of a parsed expression.
	RecordCompile(ctx context.Context, duration time.Duration, err error)

	// RecordEval records one evaluation of a compiled expression.
	RecordEval(ctx context.Context, duration time.Duration, err error)

	// RecordCache records one compiled-expression cache lookup.
	RecordCache(ctx context.Context, hit bool)
}

// otelMetrics implements Recorder using OpenTelemetry.
type otelMetrics struct {
	ops     metric.Int64Counter
	latency metric.Float64Histogram
	errors  metric.Int64Counter
	lookups metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// New returns a Recorder whose instruments come from provider.
func New(provider metric.MeterProvider) (Recorder, error) {
	return newOtelMetrics(provider.Meter(Scope))
}

// Default returns a Recorder that uses the global OTel meter provider.
// If metrics initialization fails, it returns [Noop].
//
// Configure the provider with otel.SetMeterProvider before the first call.
func Default() Recorder {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics(otel.Meter(Scope))
	})

	if defaultMetricsErr != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", defaultMetricsErr.Error()))

		return Noop{}
	}

	return defaultMetrics
}

func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	ops, err := meter.Int64Counter("lambda.ops",
		metric.WithDescription("Number of parse, compile and eval operations"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("lambda.op.latency_ms",
		metric.WithDescription("Operation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter("lambda.op.errors",
		metric.WithDescription("Number of failed operations"),
	)
	if err != nil {
		return nil, err
	}

	lookups, err := meter.Int64Counter("lambda.cache.lookups",
		metric.WithDescription("Number of compiled-expression cache lookups"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		ops:     ops,
		latency: latency,
		errors:  errs,
		lookups: lookups,
	}, nil
}

func (m *otelMetrics) record(
	ctx context.Context,
	op string,
	duration time.Duration,
	err error,
) {
	attrs := metric.WithAttributes(attribute.String("op", op))

	m.ops.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(duration.Microseconds())/1000, attrs)

	if err != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}

// RecordParse records a parse.
func (m *otelMetrics) RecordParse(ctx context.Context, d time.Duration, err error) {
	m.record(ctx, OpParse, d, err)
}

// RecordCompile records a compilation.
func (m *otelMetrics) RecordCompile(ctx context.Context, d time.Duration, err error) {
	m.record(ctx, OpCompile, d, err)
}

// RecordEval records an evaluation.
func (m *otelMetrics) RecordEval(ctx context.Context, d time.Duration, err error) {
	m.record(ctx, OpEval, d, err)
}

// RecordCache records a cache lookup.
func (m *otelMetrics) RecordCache(ctx context.Context, hit bool) {
	m.lookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
}
