// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Store backends accepted by StoreBackend.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// StoreBackend selects where the document lives: file, memory, redis or postgres.
	StoreBackend string `koanf:"store_backend"`

	// DataFile is the document path for the file backend.
	DataFile string `koanf:"data_file"`

	// RedisURL and RedisKey configure the redis backend.
	RedisURL string `koanf:"redis_url"`
	RedisKey string `koanf:"redis_key"`

	// PostgresDSN configures the postgres backend.
	PostgresDSN string `koanf:"postgres_dsn"`

	// MaxUploadBytes caps the upload request body.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// CORSAllowedOrigins is a comma separated origin list; "*" allows any.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`

	// CORSAllowCredentials echoes the caller's origin and allows cookies.
	CORSAllowCredentials bool `koanf:"cors_allow_credentials"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsConstLabels is a comma separated key=value list added to every metric.
	MetricsConstLabels string `koanf:"metrics_const_labels"`

	// MetricsLatencyBuckets overrides the latency histogram buckets (milliseconds, comma separated).
	MetricsLatencyBuckets string `koanf:"metrics_latency_buckets"`

	// DegradeCorruptStore serves empty data instead of failing when the
	// stored document cannot be parsed.
	DegradeCorruptStore bool `koanf:"degrade_corrupt_store"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8000",
		StoreBackend:       BackendFile,
		DataFile:           "data/hypetorch_latest_output.json",
		RedisKey:           "hypetorch:document",
		MaxUploadBytes:     32 << 20,
		CORSAllowedOrigins: "*",
		MetricsEnabled:     true,
	}
}

// AllowedOrigins splits CORSAllowedOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ConstLabels parses MetricsConstLabels.
func (c *Config) ConstLabels() (map[string]string, error) {
	labels := make(map[string]string)
	for _, pair := range strings.Split(c.MetricsConstLabels, ",") {
		if pair = strings.TrimSpace(pair); pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: metrics_const_labels entry %q is not key=value", ErrInvalidConfig, pair)
		}
		labels[k] = v
	}
	return labels, nil
}

// LatencyBuckets parses MetricsLatencyBuckets. Nil means the built-in buckets.
func (c *Config) LatencyBuckets() ([]float64, error) {
	var buckets []float64
	for _, f := range strings.Split(c.MetricsLatencyBuckets, ",") {
		if f = strings.TrimSpace(f); f == "" {
			continue
		}
		b, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: metrics_latency_buckets: %w", ErrInvalidConfig, err)
		}
		if len(buckets) > 0 && b <= buckets[len(buckets)-1] {
			return nil, fmt.Errorf("%w: metrics_latency_buckets must be increasing", ErrInvalidConfig)
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	}
	if _, err := c.ConstLabels(); err != nil {
		return err
	}
	if _, err := c.LatencyBuckets(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendFile:
		if c.DataFile == "" {
			return fmt.Errorf("%w: data_file is required for the file backend", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: redis_url is required for the redis backend", ErrInvalidConfig)
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn is required for the postgres backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	return nil
}
