package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	return ParseArgs(flag.NewFlagSet("tracegen", flag.ContinueOnError), args)
}

func TestParseArgs_Defaults(t *testing.T) {
	cfg, err := parse(t)
	require.NoError(t, err)

	assert.Equal(t, "-", cfg.Output)
	assert.Equal(t, FormatJSONL, cfg.Format)
	assert.Equal(t, 100, cfg.Rounds)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "**", cfg.Producers)
	assert.Equal(t, "http", cfg.Protocol)
	assert.False(t, cfg.Telemetry)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.Overrides)
	assert.NotNil(t, cfg.Logger)
}

func TestParseArgs_Flags(t *testing.T) {
	cfg, err := parse(t,
		"-output", "samples.jsonl",
		"-rounds", "10",
		"-interval", "250ms",
		"-seed", "42",
		"-producers", "ecommerce/*",
		"-kafka-brokers", "kafka-1:9092, kafka-2:9092",
		"-headers", "x-api-key=abc, x-team = red",
	)
	require.NoError(t, err)

	assert.Equal(t, "samples.jsonl", cfg.Output)
	assert.Equal(t, 10, cfg.Rounds)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "ecommerce/*", cfg.Producers)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, map[string]string{"x-api-key": "abc", "x-team": "red"}, cfg.Headers)
}

func TestParseArgs_SeedForcesSingleWorker(t *testing.T) {
	cfg, err := parse(t, "-seed", "42", "-workers", "8")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)

	cfg, err = parse(t, "-workers", "8")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)
}

func TestParseArgs_EnvironmentDefaults(t *testing.T) {
	t.Setenv("TRACEGEN_ROUNDS", "7")
	t.Setenv("TRACEGEN_TELEMETRY", "TRUE")
	t.Setenv("TRACEGEN_WORKERS", "not-a-number")

	cfg, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Rounds)
	assert.True(t, cfg.Telemetry)
	assert.Equal(t, 4, cfg.Workers)

	cfg, err = parse(t, "-rounds", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Rounds, "flags take precedence over the environment")
}

func TestParseArgs_Invalid(t *testing.T) {
	tests := map[string][]string{
		"unknown format":        {"-format", "csv"},
		"lz4 to stdout":         {"-format", FormatJSONLLZ4},
		"lz4 with rotation":     {"-format", FormatJSONLLZ4, "-output", "a.lz4", "-rotate-max-size", "10"},
		"rotation to stdout":    {"-rotate-max-size", "10"},
		"no workers":            {"-workers", "0"},
		"negative rounds":       {"-rounds", "-1"},
		"unknown protocol":      {"-protocol", "udp"},
		"brokers without topic": {"-kafka-brokers", "k:9092", "-kafka-topic", ""},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parse(t, args...)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseArgs_ProducersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "producers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("producers:\n  ecommerce/get_product_xss: 0.25\n  ecommerce/get_product: 1\n"), 0o644))

	cfg, err := parse(t, "-producers-file", path)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"ecommerce/get_product_xss": 0.25,
		"ecommerce/get_product":     1,
	}, cfg.Overrides)
}

func TestLoadOverrides_Errors(t *testing.T) {
	_, err := LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("producers: [not, a, map]\n"), 0o644))
	_, err = LoadOverrides(path)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte(""), 0o644))
	overrides, err := LoadOverrides(empty)
	require.NoError(t, err)
	assert.Empty(t, overrides)
}
