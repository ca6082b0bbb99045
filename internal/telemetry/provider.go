package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log"
	lognoop "go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
)

const (
	SeverityTrace = log.SeverityTrace
	SeverityDebug = log.SeverityDebug
	SeverityInfo  = log.SeverityInfo
	SeverityWarn  = log.SeverityWarn
	SeverityError = log.SeverityError
	SeverityFatal = log.SeverityFatal
)

// Options configures the OTLP exporters.
type Options struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Protocol       string
	Secure         bool
	Headers        map[string]string
}

// Providers bundles the trace, metric and log providers used by the generator.
type Providers struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	LoggerProvider log.LoggerProvider

	shutdown []func(context.Context) error
}

// NewNoopProviders returns providers that discard everything. Used when
// telemetry export is disabled and in tests.
func NewNoopProviders() *Providers {
	return &Providers{
		TracerProvider: tracenoop.NewTracerProvider(),
		MeterProvider:  metricnoop.NewMeterProvider(),
		LoggerProvider: lognoop.NewLoggerProvider(),
	}
}

// Shutdown flushes and stops every exporting provider.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func NewProvider(opts Options) (*Providers, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(opts.ServiceName),
			semconv.ServiceVersionKey.String(opts.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(opts.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	traceExp, err := createTraceExporter(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	metricExp, err := createMetricExporter(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExp)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(10*time.Second))),
	)

	// Create log exporter
	var logExp sdklog.Exporter
	if opts.Protocol == "http" {
		logExp, err = createHTTPLogExporter(opts)
	} else {
		logExp, err = createGRPCLogExporter(opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
		sdklog.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	// Set up propagation
	prop := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	otel.SetTextMapPropagator(prop)

	return &Providers{
		TracerProvider: tp,
		MeterProvider:  mp,
		LoggerProvider: lp,
		shutdown:       []func(context.Context) error{tp.Shutdown, mp.Shutdown, lp.Shutdown},
	}, nil
}

func userAgent(opts Options) grpc.DialOption {
	return grpc.WithUserAgent(opts.ServiceName + "/" + opts.ServiceVersion)
}

func createTraceExporter(opts Options) (*otlptrace.Exporter, error) {
	if opts.Protocol == "http" {
		return createHTTPTraceExporter(opts)
	}
	return createGRPCTraceExporter(opts)
}

func createHTTPTraceExporter(opts Options) (*otlptrace.Exporter, error) {
	o := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(opts.Endpoint),
	}
	if !opts.Secure {
		o = append(o, otlptracehttp.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		o = append(o, otlptracehttp.WithHeaders(opts.Headers))
	}
	return otlptracehttp.New(context.Background(), o...)
}

func createGRPCTraceExporter(opts Options) (*otlptrace.Exporter, error) {
	o := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithDialOption(userAgent(opts)),
	}
	if !opts.Secure {
		o = append(o, otlptracegrpc.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		o = append(o, otlptracegrpc.WithHeaders(opts.Headers))
	}
	return otlptracegrpc.New(context.Background(), o...)
}

func createMetricExporter(opts Options) (sdkmetric.Exporter, error) {
	if opts.Protocol == "http" {
		return createHTTPMetricExporter(opts)
	}
	return createGRPCMetricExporter(opts)
}

func createHTTPMetricExporter(opts Options) (sdkmetric.Exporter, error) {
	o := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(opts.Endpoint),
	}
	if !opts.Secure {
		o = append(o, otlpmetrichttp.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		o = append(o, otlpmetrichttp.WithHeaders(opts.Headers))
	}
	return otlpmetrichttp.New(context.Background(), o...)
}

func createGRPCMetricExporter(opts Options) (sdkmetric.Exporter, error) {
	o := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(opts.Endpoint),
		otlpmetricgrpc.WithDialOption(userAgent(opts)),
	}
	if !opts.Secure {
		o = append(o, otlpmetricgrpc.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		o = append(o, otlpmetricgrpc.WithHeaders(opts.Headers))
	}
	return otlpmetricgrpc.New(context.Background(), o...)
}

func createHTTPLogExporter(opts Options) (sdklog.Exporter, error) {
	o := []otlploghttp.Option{
		otlploghttp.WithEndpoint(opts.Endpoint),
	}
	if !opts.Secure {
		o = append(o, otlploghttp.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		o = append(o, otlploghttp.WithHeaders(opts.Headers))
	}
	return otlploghttp.New(context.Background(), o...)
}

func createGRPCLogExporter(opts Options) (sdklog.Exporter, error) {
	o := []otlploggrpc.Option{
		otlploggrpc.WithEndpoint(opts.Endpoint),
		otlploggrpc.WithDialOption(userAgent(opts)),
	}
	if !opts.Secure {
		o = append(o, otlploggrpc.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		o = append(o, otlploggrpc.WithHeaders(opts.Headers))
	}
	return otlploggrpc.New(context.Background(), o...)
}

// CreateLogRecord is a helper function to create OpenTelemetry log records
// with consistent timestamp and formatting.
func CreateLogRecord(severity log.Severity, message string, attrs ...log.KeyValue) log.Record {
	now := time.Now()
	record := log.Record{}
	record.SetTimestamp(now)
	record.SetObservedTimestamp(now)
	record.SetSeverity(severity)
	record.SetSeverityText(severity.String())
	record.SetBody(log.StringValue(message))
	record.AddAttributes(attrs...)
	return record
}
