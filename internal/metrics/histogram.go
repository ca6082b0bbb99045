package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type HistogramConfig struct {
	Name        string
	Description string
	Unit        string
	Bounds      []float64
}

// BodySizeBounds buckets serialized response bodies in bytes.
var BodySizeBounds = []float64{64, 256, 512, 1024, 2048, 4096, 8192}

func RegisterHistogram(meter metric.Meter, hc HistogramConfig) (metric.Int64Histogram, error) {
	histogram, err := meter.Int64Histogram(
		hc.Name,
		metric.WithDescription(hc.Description),
		metric.WithUnit(hc.Unit),
		metric.WithExplicitBucketBoundaries(hc.Bounds...),
	)
	if err != nil {
		return nil, err
	}

	return histogram, nil
}

func RecordHistogram(ctx context.Context, histogram metric.Int64Histogram, value int64, attrs ...attribute.KeyValue) {
	histogram.Record(ctx, value, metric.WithAttributes(withSpan(ctx, attrs)...))
}
