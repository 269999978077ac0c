package metrics

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Collector is a Recorder backed by an in-process meter provider whose
// measurements are read on demand.
type Collector struct {
	Recorder

	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

// NewCollector returns a Collector with its own manual reader.
func NewCollector() (*Collector, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	rec, err := New(provider)
	if err != nil {
		return nil, err
	}

	return &Collector{Recorder: rec, reader: reader, provider: provider}, nil
}

// Collect reads the current measurements.
func (c *Collector) Collect(ctx context.Context) (*metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics
	if err := c.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	return &rm, nil
}

// Summary reads the current measurements and flattens them into log
// attributes, one per instrument and attribute set, sorted by key.
func (c *Collector) Summary(ctx context.Context) ([]slog.Attr, error) {
	rm, err := c.Collect(ctx)
	if err != nil {
		return nil, err
	}

	return Summarize(rm), nil
}

// Shutdown flushes and stops the meter provider.
func (c *Collector) Shutdown(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}

// Summarize flattens counters and histograms into log attributes.
// Counters report their value; histograms report count and sum.
func Summarize(rm *metricdata.ResourceMetrics) []slog.Attr {
	var attrs []slog.Attr

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					attrs = append(attrs,
						slog.Int64(m.Name+suffix(dp.Attributes.ToSlice()), dp.Value))
				}

			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					key := m.Name + suffix(dp.Attributes.ToSlice())
					attrs = append(attrs, slog.Group(key,
						slog.Uint64("count", dp.Count),
						slog.Float64("sum", dp.Sum),
					))
				}
			}
		}
	}

	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })

	return attrs
}

// suffix renders an attribute set as "[k=v,k=v]", or "" when empty.
func suffix(kvs []attribute.KeyValue) string {
	if len(kvs) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteByte('[')

	for i, kv := range kvs {
		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(string(kv.Key))
		sb.WriteByte('=')
		sb.WriteString(kv.Value.Emit())
	}

	sb.WriteByte(']')

	return sb.String()
}
