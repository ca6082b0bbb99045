package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/krzko/tracegen/internal/config"
	"github.com/krzko/tracegen/internal/sink"
	"github.com/krzko/tracegen/internal/telemetry"
	"github.com/krzko/tracegen/pkg/data"
	"github.com/krzko/tracegen/pkg/producer"
	"github.com/krzko/tracegen/pkg/producer/ecommerce"
	"github.com/krzko/tracegen/pkg/simulator"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "help" || os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tracegen: %v\n", err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		printVersion()
		os.Exit(0)
	}

	gen := data.NewGenerator(cfg.Seed)
	reg := producer.NewRegistry()
	ecommerce.Register(reg, gen)

	if cfg.ListProducers {
		for _, name := range reg.Names() {
			fmt.Println(name)
		}
		os.Exit(0)
	}

	producers, err := reg.Build(cfg.Producers, cfg.Overrides)
	if err != nil {
		cfg.Logger.Error("Failed to select producers", "error", err)
		os.Exit(1)
	}

	out, err := newSink(cfg)
	if err != nil {
		cfg.Logger.Error("Failed to open sink", "error", err)
		os.Exit(1)
	}

	tel := telemetry.NewNoopProviders()
	if cfg.Telemetry {
		tel, err = telemetry.NewProvider(telemetry.Options{
			ServiceName:    "tracegen",
			ServiceVersion: version,
			Environment:    cfg.Environment,
			Endpoint:       cfg.Endpoint,
			Protocol:       cfg.Protocol,
			Secure:         cfg.Secure,
			Headers:        cfg.Headers,
		})
		if err != nil {
			cfg.Logger.Error("Failed to create telemetry providers", "error", err)
			out.Close()
			os.Exit(1)
		}
	}

	sim, err := simulator.New(producers, out, tel, cfg.Logger, simulator.Options{
		Rounds:   cfg.Rounds,
		Interval: cfg.Interval,
		Workers:  cfg.Workers,
	})
	if err != nil {
		cfg.Logger.Error("Failed to create simulator", "error", err)
		out.Close()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cfg.Logger.Info("Received shutdown signal. Initiating graceful shutdown...")
			cancel()
		case <-ctx.Done():
		}
	}()

	exitCode := 0
	if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Logger.Error("Simulator failed", "error", err)
		exitCode = 1
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := sim.Shutdown(shutdownCtx); err != nil {
		cfg.Logger.Error("Error during shutdown", "error", err)
		exitCode = 1
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		cfg.Logger.Error("Error shutting down telemetry", "error", err)
	}

	cfg.Logger.Info("Generator shutdown complete")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// newSink opens the fixture file and any remote sinks configured alongside it.
func newSink(cfg *config.Config) (sink.Sink, error) {
	file, err := sink.NewFileSink(sink.FileOptions{
		Path:       cfg.Output,
		Compress:   cfg.Format == config.FormatJSONLLZ4,
		MaxSizeMB:  cfg.RotateMaxSizeMB,
		MaxBackups: cfg.RotateBackups,
	})
	if err != nil {
		return nil, err
	}

	sinks := sink.Multi{file}
	if len(cfg.KafkaBrokers) > 0 {
		sinks = append(sinks, sink.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic))
	}
	if cfg.CollectorURL != "" {
		sinks = append(sinks, sink.NewCollector(cfg.CollectorURL, cfg.CollectorAPIKey))
	}
	return sinks, nil
}

func printUsage() {
	fmt.Printf("\nNAME:\n")
	fmt.Printf("  tracegen - Synthetic API traffic sample generator\n")

	fmt.Printf("\nDESCRIPTION:\n")
	fmt.Printf("  Emits labeled request/response samples, benign and malicious, for\n")
	fmt.Printf("  exercising API security detectors. Samples are written as JSON lines\n")
	fmt.Printf("  and optionally published to Kafka or a trace collector.\n")

	fmt.Printf("\nVERSION:\n")
	fmt.Printf("  %s-%s (%s)\n", version, commit, date)

	fmt.Printf("\nUSAGE:\n")
	fmt.Printf("  tracegen [flags]\n")
	fmt.Printf("  tracegen -list\n")
	fmt.Printf("  tracegen -version\n")

	fmt.Printf("\nFLAGS AND ENVIRONMENT VARIABLES:\n")
	fmt.Printf("  Flags can be set via command line or environment variables.\n")
	fmt.Printf("  Command line flags take precedence over environment variables.\n\n")
	fmt.Printf("  --list\n")
	fmt.Printf("    List registered producers and exit\n\n")
	fmt.Printf("  --producers, TRACEGEN_PRODUCERS          (default: \"**\")\n")
	fmt.Printf("    Glob selecting producers by name\n\n")
	fmt.Printf("  --producers-file, TRACEGEN_PRODUCERS_FILE\n")
	fmt.Printf("    YAML file with emission probability overrides\n\n")
	fmt.Printf("  --rounds, TRACEGEN_ROUNDS                (default: 100)\n")
	fmt.Printf("    Generation passes over all producers (0 runs until interrupted)\n\n")
	fmt.Printf("  --interval, TRACEGEN_INTERVAL            (default: 0s)\n")
	fmt.Printf("    Pause between passes\n\n")
	fmt.Printf("  --workers, TRACEGEN_WORKERS              (default: 4)\n")
	fmt.Printf("    Producers attempted concurrently\n\n")
	fmt.Printf("  --seed, TRACEGEN_SEED                    (default: 0)\n")
	fmt.Printf("    Random seed for reproducible output, forces one worker (0 picks one)\n\n")
	fmt.Printf("  --output, TRACEGEN_OUTPUT                (default: \"-\")\n")
	fmt.Printf("    Fixture file path, or - for stdout\n\n")
	fmt.Printf("  --format, TRACEGEN_FORMAT                (default: \"jsonl\")\n")
	fmt.Printf("    Fixture file format (jsonl or jsonl.lz4)\n\n")
	fmt.Printf("  --rotate-max-size, TRACEGEN_ROTATE_MAX_SIZE\n")
	fmt.Printf("    Rotate jsonl fixture files at this size in MB\n\n")
	fmt.Printf("  --rotate-backups, TRACEGEN_ROTATE_BACKUPS (default: 5)\n")
	fmt.Printf("    Rotated fixture files to keep\n\n")
	fmt.Printf("  --kafka-brokers, TRACEGEN_KAFKA_BROKERS\n")
	fmt.Printf("    Kafka brokers, comma-separated\n\n")
	fmt.Printf("  --kafka-topic, TRACEGEN_KAFKA_TOPIC      (default: \"tracegen.samples\")\n")
	fmt.Printf("    Kafka topic for samples\n\n")
	fmt.Printf("  --collector-url, TRACEGEN_COLLECTOR_URL\n")
	fmt.Printf("    Trace collector ingest URL\n\n")
	fmt.Printf("  --collector-api-key, TRACEGEN_COLLECTOR_API_KEY\n")
	fmt.Printf("    Trace collector API key\n\n")
	fmt.Printf("  --telemetry, TRACEGEN_TELEMETRY          (default: false)\n")
	fmt.Printf("    Export generator traces, metrics and logs over OTLP\n\n")
	fmt.Printf("  --endpoint, OTEL_EXPORTER_OTLP_ENDPOINT  (default: \"localhost:4318\")\n")
	fmt.Printf("    OpenTelemetry collector endpoint\n\n")
	fmt.Printf("  --protocol, OTEL_EXPORTER_OTLP_PROTOCOL  (default: \"http\")\n")
	fmt.Printf("    Protocol to use (grpc or http)\n\n")
	fmt.Printf("  --secure, OTEL_EXPORTER_OTLP_SECURE     (default: false)\n")
	fmt.Printf("    Use secure connection\n\n")
	fmt.Printf("  --headers, OTEL_EXPORTER_OTLP_HEADERS\n")
	fmt.Printf("    Headers as key=value pairs, comma-separated\n\n")
	fmt.Printf("  --env, APP_ENV                          (default: \"development\")\n")
	fmt.Printf("    Application environment\n\n")
	fmt.Printf("  --log-level, LOG_LEVEL                   (default: \"info\")\n")
	fmt.Printf("    Log level (debug, info, warn, error)\n\n")
	fmt.Printf("  -v, --version\n")
	fmt.Printf("    Display version information\n")

	fmt.Printf("\nEXAMPLES:\n")
	fmt.Printf("  # Ten passes of the XSS scenarios into a file:\n")
	fmt.Printf("  tracegen -producers=\"**/*xss*\" -rounds=10 -output=xss.jsonl\n\n")
	fmt.Printf("  # Reproducible compressed fixture:\n")
	fmt.Printf("  tracegen -seed=42 -workers=1 -output=fixture.jsonl.lz4 -format=jsonl.lz4\n\n")
	fmt.Printf("  # Continuous traffic into Kafka with generator telemetry:\n")
	fmt.Printf("  tracegen -rounds=0 -interval=1s -kafka-brokers=\"localhost:9092\" -telemetry\n")

	fmt.Printf("\nDOCUMENTATION:\n")
	fmt.Printf("  https://github.com/krzko/tracegen\n")
}

func printVersion() {
	fmt.Printf("tracegen version: %s\n", version)
	fmt.Printf("git commit: %s\n", commit)
	fmt.Printf("built at: %s\n", date)
}
