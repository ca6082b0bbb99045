package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalidConfig is returned when flag or environment values are inconsistent.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	FormatJSONL    = "jsonl"
	FormatJSONLLZ4 = "jsonl.lz4"
)

type Config struct {
	// Output
	Output          string
	Format          string
	RotateMaxSizeMB int
	RotateBackups   int

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string

	// Collector
	CollectorURL    string
	CollectorAPIKey string

	// Generation
	Rounds        int
	Interval      time.Duration
	Workers       int
	Seed          uint64
	Producers     string
	ProducersFile string
	Overrides     map[string]float64
	ListProducers bool

	// Telemetry
	Telemetry   bool
	Endpoint    string
	Headers     map[string]string
	Secure      bool
	Protocol    string
	Environment string

	LogLevel    string
	Logger      *slog.Logger
	ShowVersion bool
}

// Parse reads .env, the environment and the process flags.
func Parse() (*Config, error) {
	godotenv.Load()
	return ParseArgs(flag.CommandLine, os.Args[1:])
}

// ParseArgs defines the generator flags on fs and parses args. Flag defaults
// come from the environment, so flags take precedence over variables.
func ParseArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{
		Headers:   make(map[string]string),
		Overrides: make(map[string]float64),
	}

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Display version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Display version information (shorthand)")
	fs.BoolVar(&cfg.ListProducers, "list", false, "List registered producers and exit")

	fs.StringVar(&cfg.Output, "output", getEnv("TRACEGEN_OUTPUT", "-"), "Fixture file path, or - for stdout")
	fs.StringVar(&cfg.Format, "format", getEnv("TRACEGEN_FORMAT", FormatJSONL), "Fixture file format (jsonl or jsonl.lz4)")
	fs.IntVar(&cfg.RotateMaxSizeMB, "rotate-max-size", getEnvInt("TRACEGEN_ROTATE_MAX_SIZE", 0), "Rotate jsonl fixture files at this size in MB (0 disables)")
	fs.IntVar(&cfg.RotateBackups, "rotate-backups", getEnvInt("TRACEGEN_ROTATE_BACKUPS", 5), "Rotated fixture files to keep")

	brokers := fs.String("kafka-brokers", getEnv("TRACEGEN_KAFKA_BROKERS", ""), "Kafka brokers, comma-separated")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", getEnv("TRACEGEN_KAFKA_TOPIC", "tracegen.samples"), "Kafka topic for samples")

	fs.StringVar(&cfg.CollectorURL, "collector-url", getEnv("TRACEGEN_COLLECTOR_URL", ""), "Trace collector ingest URL")
	fs.StringVar(&cfg.CollectorAPIKey, "collector-api-key", getEnv("TRACEGEN_COLLECTOR_API_KEY", ""), "Trace collector API key")

	fs.IntVar(&cfg.Rounds, "rounds", getEnvInt("TRACEGEN_ROUNDS", 100), "Generation passes over all producers (0 runs until interrupted)")
	fs.DurationVar(&cfg.Interval, "interval", getEnvDuration("TRACEGEN_INTERVAL", 0), "Pause between passes")
	fs.IntVar(&cfg.Workers, "workers", getEnvInt("TRACEGEN_WORKERS", 4), "Producers attempted concurrently")
	fs.Uint64Var(&cfg.Seed, "seed", getEnvUint64("TRACEGEN_SEED", 0), "Random seed for reproducible output, forces one worker (0 picks one)")
	fs.StringVar(&cfg.Producers, "producers", getEnv("TRACEGEN_PRODUCERS", "**"), "Glob selecting producers by name")
	fs.StringVar(&cfg.ProducersFile, "producers-file", getEnv("TRACEGEN_PRODUCERS_FILE", ""), "YAML file with emission probability overrides")

	fs.BoolVar(&cfg.Telemetry, "telemetry", getEnvBool("TRACEGEN_TELEMETRY", false), "Export generator telemetry over OTLP")
	fs.StringVar(&cfg.Endpoint, "endpoint", getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"), "OpenTelemetry collector endpoint")
	fs.BoolVar(&cfg.Secure, "secure", getEnvBool("OTEL_EXPORTER_OTLP_SECURE", false), "Use secure connection")
	fs.StringVar(&cfg.Protocol, "protocol", getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "http"), "Protocol to use (grpc or http)")
	fs.StringVar(&cfg.Environment, "env", getEnv("APP_ENV", "development"), "Application environment")
	headers := fs.String("headers", getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""), "Headers as key=value pairs, comma-separated")

	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Headers = parseHeaders(*headers)
	cfg.KafkaBrokers = parseList(*brokers)

	if cfg.ProducersFile != "" {
		overrides, err := LoadOverrides(cfg.ProducersFile)
		if err != nil {
			return nil, err
		}
		cfg.Overrides = overrides
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Samples own stdout when no output file is given.
	logOut := os.Stdout
	if cfg.Output == "-" {
		logOut = os.Stderr
	}
	cfg.Logger = slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	// Concurrent producers interleave draws from the shared generator.
	if cfg.Seed != 0 && cfg.Workers > 1 {
		cfg.Logger.Warn("Seeded run uses a single worker", "seed", cfg.Seed, "requested_workers", cfg.Workers)
		cfg.Workers = 1
	}

	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatJSONL, FormatJSONLLZ4:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	if c.Format == FormatJSONLLZ4 && c.Output == "-" {
		return fmt.Errorf("%w: %s output needs a file path", ErrInvalidConfig, FormatJSONLLZ4)
	}
	if c.Format == FormatJSONLLZ4 && c.RotateMaxSizeMB > 0 {
		return fmt.Errorf("%w: rotation is only supported for %s", ErrInvalidConfig, FormatJSONL)
	}
	if c.RotateMaxSizeMB > 0 && c.Output == "-" {
		return fmt.Errorf("%w: rotation needs a file path", ErrInvalidConfig)
	}
	if c.RotateMaxSizeMB < 0 || c.RotateBackups < 0 {
		return fmt.Errorf("%w: rotation settings must not be negative", ErrInvalidConfig)
	}
	if c.Rounds < 0 {
		return fmt.Errorf("%w: rounds must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative", ErrInvalidConfig)
	}
	if c.Protocol != "http" && c.Protocol != "grpc" {
		return fmt.Errorf("%w: unknown protocol %q", ErrInvalidConfig, c.Protocol)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("%w: kafka topic is required with brokers", ErrInvalidConfig)
	}
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseHeaders(headerString string) map[string]string {
	headers := make(map[string]string)
	if headerString == "" {
		return headers
	}

	pairs := strings.Split(headerString, ",")
	for _, pair := range pairs {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) == 2 {
			key := strings.TrimSpace(kv[0])
			value := strings.TrimSpace(kv[1])
			headers[key] = value
		}
	}

	return headers
}

func parseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return strings.ToLower(value) == "true"
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvUint64(key string, fallback uint64) uint64 {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
