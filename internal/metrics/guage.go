package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type GaugeConfig struct {
	Name        string
	Description string
	Unit        string
}

// Observation is one gauge value with its attributes.
type Observation struct {
	Value      float64
	Attributes []attribute.KeyValue
}

// RegisterGauge registers an observable gauge whose values are read from
// observe at every collection.
func RegisterGauge(meter metric.Meter, gc GaugeConfig, observe func() []Observation) (metric.Float64ObservableGauge, error) {
	gauge, err := meter.Float64ObservableGauge(
		gc.Name,
		metric.WithUnit(gc.Unit),
		metric.WithDescription(gc.Description),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for _, obs := range observe() {
			o.ObserveFloat64(gauge, obs.Value, metric.WithAttributes(obs.Attributes...))
		}
		return nil
	}, gauge)

	return gauge, err
}
