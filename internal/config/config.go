// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Flat koanf keys; environment variables use the COURSECORRECT_ prefix.
// - New() builds a Config with defaults; Load layers file and env on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Dataset source kinds accepted by DatasetSource.
const (
	DatasetNone     = "none"
	DatasetCSV      = "csv"
	DatasetPostgres = "postgres"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LowerBoundSeconds and UpperBoundSeconds bound plausible finish times.
	// Records outside the bounds never reach a statistic.
	LowerBoundSeconds float64 `koanf:"lower_bound_seconds"`
	UpperBoundSeconds float64 `koanf:"upper_bound_seconds"`

	// TopFraction keeps only the fastest share of a small sample.
	TopFraction float64 `koanf:"top_fraction"`

	// FullSampleThreshold is the sample size at or above which a
	// venue/gender group is used whole. Groups below it are trimmed to
	// TopFraction. Zero disables trimming entirely.
	FullSampleThreshold int `koanf:"full_sample_threshold"`

	// LowConfidenceThreshold marks correction entries built from fewer
	// records as low confidence.
	LowConfidenceThreshold int `koanf:"low_confidence_threshold"`

	// BinWidthSeconds sets the distribution histogram bin width.
	BinWidthSeconds float64 `koanf:"bin_width_seconds"`

	// RecomputeIntervalMS is how often the engine checks for new data and
	// rebuilds the correction table.
	RecomputeIntervalMS int `koanf:"recompute_interval_ms"`

	// QueueSize bounds the in-memory ingest queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the record deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// AuthSecret enables bearer-token auth on write endpoints when set.
	AuthSecret string `koanf:"auth_secret"`

	// AuthIssuer is the expected token issuer when auth is enabled.
	AuthIssuer string `koanf:"auth_issuer"`

	// DatasetSource selects the startup dataset: none, csv or postgres.
	DatasetSource string `koanf:"dataset_source"`

	// DatasetCSVPath points at the cleaned results CSV when source is csv.
	DatasetCSVPath string `koanf:"dataset_csv_path"`

	// PostgresDSN is the connection string when source is postgres.
	PostgresDSN string `koanf:"postgres_dsn"`

	// KafkaEnabled switches on the streaming ingest consumer.
	KafkaEnabled bool `koanf:"kafka_enabled"`

	// KafkaBrokers is a comma-separated broker list.
	KafkaBrokers string `koanf:"kafka_brokers"`

	// KafkaTopic and KafkaGroupID identify the results stream.
	KafkaTopic   string `koanf:"kafka_topic"`
	KafkaGroupID string `koanf:"kafka_group_id"`

	// CorrectionsExportPath, when set, receives the published correction
	// table as JSON after every successful recompute.
	CorrectionsExportPath string `koanf:"corrections_export_path"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":8080",
		LowerBoundSeconds:      3000,
		UpperBoundSeconds:      9000,
		TopFraction:            0.8,
		FullSampleThreshold:    0,
		LowConfidenceThreshold: 50,
		BinWidthSeconds:        300,
		RecomputeIntervalMS:    3000,
		QueueSize:              10_000,
		WorkerCount:            runtime.NumCPU() * 2,
		DedupeSize:             100_000,
		AuthIssuer:             "coursecorrect",
		DatasetSource:          DatasetNone,
		KafkaTopic:             "race-results",
		KafkaGroupID:           "coursecorrect-ingest",
	}
}

// Brokers splits the comma-separated broker list, dropping empty entries.
func (c *Config) Brokers() []string {
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks cross-field consistency. All violations are wrapped with
// ErrInvalidConfig so callers can errors.Is them.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.LowerBoundSeconds <= 0 || c.UpperBoundSeconds <= 0 {
		return fmt.Errorf("%w: time bounds must be positive", ErrInvalidConfig)
	}
	if c.LowerBoundSeconds >= c.UpperBoundSeconds {
		return fmt.Errorf("%w: lower_bound_seconds must be below upper_bound_seconds", ErrInvalidConfig)
	}
	if c.TopFraction <= 0 || c.TopFraction > 1 {
		return fmt.Errorf("%w: top_fraction must be in (0, 1]", ErrInvalidConfig)
	}
	if c.FullSampleThreshold < 0 {
		return fmt.Errorf("%w: full_sample_threshold must not be negative", ErrInvalidConfig)
	}
	if c.LowConfidenceThreshold < 0 {
		return fmt.Errorf("%w: low_confidence_threshold must not be negative", ErrInvalidConfig)
	}
	if c.BinWidthSeconds <= 0 {
		return fmt.Errorf("%w: bin_width_seconds must be positive", ErrInvalidConfig)
	}
	if c.RecomputeIntervalMS <= 0 {
		return fmt.Errorf("%w: recompute_interval_ms must be positive", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.DedupeSize <= 0 {
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	}
	switch c.DatasetSource {
	case DatasetNone:
	case DatasetCSV:
		if c.DatasetCSVPath == "" {
			return fmt.Errorf("%w: dataset_csv_path required for csv source", ErrInvalidConfig)
		}
	case DatasetPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn required for postgres source", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown dataset_source %q", ErrInvalidConfig, c.DatasetSource)
	}
	if c.KafkaEnabled {
		if len(c.Brokers()) == 0 {
			return fmt.Errorf("%w: kafka_brokers required when kafka is enabled", ErrInvalidConfig)
		}
		if c.KafkaTopic == "" {
			return fmt.Errorf("%w: kafka_topic required when kafka is enabled", ErrInvalidConfig)
		}
	}
	return nil
}
