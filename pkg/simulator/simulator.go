package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/krzko/tracegen/internal/metrics"
	"github.com/krzko/tracegen/internal/sink"
	"github.com/krzko/tracegen/internal/telemetry"
	"github.com/krzko/tracegen/pkg/producer"
)

const instrumentationName = "github.com/krzko/tracegen/pkg/simulator"

const (
	outcomeEmitted = "emitted"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

// Options controls how often and how widely producers are attempted.
type Options struct {
	// Rounds is the number of passes over all producers; 0 runs until the
	// context is canceled.
	Rounds   int
	Interval time.Duration
	Workers  int
}

// Stats counts attempt outcomes for one producer.
type Stats struct {
	Producer string
	Emitted  int64
	Skipped  int64
	Failed   int64
}

type counters struct {
	emitted atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

type Simulator struct {
	producers  []producer.Producer
	counters   []*counters
	sink       sink.Sink
	opts       Options
	logger     *slog.Logger
	otelLogger log.Logger
	tracer     trace.Tracer
	samples    metric.Int64Counter
	bodySize   metric.Int64Histogram
}

func New(producers []producer.Producer, out sink.Sink, tel *telemetry.Providers, logger *slog.Logger, opts Options) (*Simulator, error) {
	if len(producers) == 0 {
		return nil, errors.New("simulator needs at least one producer")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	meter := tel.MeterProvider.Meter(instrumentationName)

	sim := &Simulator{
		producers:  producers,
		counters:   make([]*counters, len(producers)),
		sink:       out,
		opts:       opts,
		logger:     logger.With("component", "simulator"),
		otelLogger: tel.LoggerProvider.Logger(instrumentationName),
		tracer:     tel.TracerProvider.Tracer(instrumentationName),
	}
	for i := range sim.counters {
		sim.counters[i] = &counters{}
	}

	var err error
	sim.samples, err = metrics.RegisterSum(meter, metrics.SumConfig{
		Name:        "tracegen.samples",
		Description: "Producer attempts by outcome",
		Unit:        "{attempt}",
	})
	if err != nil {
		return nil, fmt.Errorf("register sample counter: %w", err)
	}

	sim.bodySize, err = metrics.RegisterHistogram(meter, metrics.HistogramConfig{
		Name:        "tracegen.sample.response.body.size",
		Description: "Serialized response body size of emitted samples",
		Unit:        "By",
		Bounds:      metrics.BodySizeBounds,
	})
	if err != nil {
		return nil, fmt.Errorf("register body size histogram: %w", err)
	}

	_, err = metrics.RegisterGauge(meter, metrics.GaugeConfig{
		Name:        "tracegen.producer.emit_probability",
		Description: "Configured emission probability per producer",
		Unit:        "1",
	}, sim.observeProbabilities)
	if err != nil {
		return nil, fmt.Errorf("register probability gauge: %w", err)
	}

	return sim, nil
}

func (s *Simulator) observeProbabilities() []metrics.Observation {
	out := make([]metrics.Observation, len(s.producers))
	for i, p := range s.producers {
		out[i] = metrics.Observation{
			Value:      p.Probability(),
			Attributes: []attribute.KeyValue{attribute.String("producer", p.Name())},
		}
	}
	return out
}

// Run attempts every producer once per round. Generation errors are logged
// and counted per producer without stopping the others; a sink failure
// stops the run.
func (s *Simulator) Run(ctx context.Context) error {
	ctx, rootSpan := s.tracer.Start(ctx, "simulation",
		trace.WithAttributes(
			attribute.Int("simulation.rounds", s.opts.Rounds),
			attribute.Int("simulation.producers", len(s.producers)),
		))
	defer rootSpan.End()

	s.logger.Info("All producers started", "producers", len(s.producers), "rounds", s.opts.Rounds, "workers", s.opts.Workers)

	for round := 1; s.opts.Rounds == 0 || round <= s.opts.Rounds; round++ {
		if err := s.runRound(ctx, round); err != nil {
			rootSpan.SetStatus(codes.Error, err.Error())
			return err
		}

		if s.opts.Interval > 0 && (s.opts.Rounds == 0 || round < s.opts.Rounds) {
			select {
			case <-ctx.Done():
				s.logger.Info("Simulation stopped by context cancellation", "round", round)
				return ctx.Err()
			case <-time.After(s.opts.Interval):
			}
		} else if err := ctx.Err(); err != nil {
			s.logger.Info("Simulation stopped by context cancellation", "round", round)
			return err
		}
	}

	s.logger.Info("All rounds completed")
	s.otelLogger.Emit(ctx, telemetry.CreateLogRecord(
		telemetry.SeverityInfo,
		"Simulation completed",
		log.Int("rounds", s.opts.Rounds),
	))
	return nil
}

func (s *Simulator) runRound(ctx context.Context, round int) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, p := range s.producers {
		g.Go(func() error {
			return s.attempt(gCtx, p, s.counters[i], round)
		})
	}
	return g.Wait()
}

func (s *Simulator) attempt(ctx context.Context, p producer.Producer, c *counters, round int) error {
	name := p.Name()
	ctx, span := s.tracer.Start(ctx, "attempt "+name,
		trace.WithAttributes(
			attribute.String("producer.name", name),
			attribute.Float64("producer.emit_probability", p.Probability()),
			attribute.Int("simulation.round", round),
		))
	defer span.End()

	res, err := producer.Attempt(p)
	if err != nil {
		c.failed.Add(1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "sample generation failed")
		metrics.RecordSum(ctx, s.samples, 1, outcome(name, outcomeFailed)...)

		s.logger.Error("Sample generation failed", "producer", name, "round", round, "error", err)
		s.otelLogger.Emit(ctx, telemetry.CreateLogRecord(
			telemetry.SeverityError,
			"Sample generation failed",
			log.String("producer", name),
			log.String("error", err.Error()),
		))
		return nil
	}

	if !res.Emitted {
		c.skipped.Add(1)
		span.SetAttributes(attribute.String("attempt.outcome", outcomeSkipped))
		metrics.RecordSum(ctx, s.samples, 1, outcome(name, outcomeSkipped)...)
		return nil
	}

	sample := res.Sample
	span.SetAttributes(
		attribute.String("attempt.outcome", outcomeEmitted),
		semconv.HTTPRequestMethodKey.String(sample.Request.Method),
		semconv.ServerAddress(sample.Request.URL.Host),
		semconv.URLPath(sample.Request.URL.Path),
		semconv.HTTPResponseStatusCode(sample.Response.Status),
		attribute.String("sample.source", sample.Meta.Source),
		attribute.String("sample.destination", sample.Meta.Destination),
	)

	if err := s.sink.Write(ctx, sink.Record{Producer: name, Sample: sample}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sample write failed")
		return fmt.Errorf("write sample from %s: %w", name, err)
	}

	c.emitted.Add(1)
	metrics.RecordSum(ctx, s.samples, 1, outcome(name, outcomeEmitted)...)
	metrics.RecordHistogram(ctx, s.bodySize, int64(len(sample.Response.Body)), attribute.String("producer", name))
	s.logger.Debug("Sample emitted", "producer", name, "round", round, "path", sample.Request.URL.Path)
	return nil
}

func outcome(producerName, result string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("producer", producerName),
		attribute.String("outcome", result),
	}
}

// Summary returns per-producer outcome counts in producer order.
func (s *Simulator) Summary() []Stats {
	out := make([]Stats, len(s.producers))
	for i, p := range s.producers {
		c := s.counters[i]
		out[i] = Stats{
			Producer: p.Name(),
			Emitted:  c.emitted.Load(),
			Skipped:  c.skipped.Load(),
			Failed:   c.failed.Load(),
		}
	}
	return out
}

func (s *Simulator) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down simulator")
	for _, st := range s.Summary() {
		s.logger.Info("Producer summary",
			"producer", st.Producer,
			"emitted", st.Emitted,
			"skipped", st.Skipped,
			"failed", st.Failed,
		)
	}
	if err := s.sink.Close(); err != nil {
		s.logger.Error("Error closing sink", "error", err)
		return err
	}
	return nil
}
