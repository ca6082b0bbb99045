package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type SumConfig struct {
	Name        string
	Description string
	Unit        string
}

func RegisterSum(meter metric.Meter, sc SumConfig) (metric.Int64Counter, error) {
	counter, err := meter.Int64Counter(
		sc.Name,
		metric.WithDescription(sc.Description),
		metric.WithUnit(sc.Unit),
	)
	if err != nil {
		return nil, err
	}

	return counter, nil
}

func RecordSum(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	counter.Add(ctx, value, metric.WithAttributes(withSpan(ctx, attrs)...))
}

// withSpan appends the active span's ids so a data point can be correlated
// with the attempt that produced it.
func withSpan(ctx context.Context, attrs []attribute.KeyValue) []attribute.KeyValue {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return attrs
	}
	out := make([]attribute.KeyValue, 0, len(attrs)+2)
	out = append(out, attrs...)
	return append(out,
		attribute.String("trace_id", span.SpanContext().TraceID().String()),
		attribute.String("span_id", span.SpanContext().SpanID().String()),
	)
}
