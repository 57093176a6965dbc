package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the murmur service.
// Environment variables are parsed from the MURMUR_ prefix,
// e.g. MURMUR_HTTP_PORT, MURMUR_DATA_DIR.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// DataDir is the root for all durable state: recordings live under
	// DataDir/recordings, the metadata index under DataDir.
	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	// IndexBackend selects the metadata document store: "file" or "sqlite".
	IndexBackend string `envconfig:"INDEX_BACKEND" default:"file"`

	// Capture configuration
	CaptureDevice   string `envconfig:"CAPTURE_DEVICE" default:"default"`
	SampleRate      int    `envconfig:"SAMPLE_RATE" default:"44100"`
	Channels        int    `envconfig:"CHANNELS" default:"1"`
	ChunkIntervalMS int    `envconfig:"CHUNK_INTERVAL_MS" default:"500"`

	// Cleanup sweeper
	SweepOnStart  bool `envconfig:"SWEEP_ON_START" default:"true"`
	RetentionDays int  `envconfig:"RETENTION_DAYS" default:"30"`

	// Health monitoring
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults validates derived settings.
func (c *Config) ResolveDefaults() error {
	switch c.IndexBackend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unsupported MURMUR_INDEX_BACKEND: %s", c.IndexBackend)
	}
	if c.ChunkIntervalMS < 100 || c.ChunkIntervalMS > 5000 {
		return fmt.Errorf("MURMUR_CHUNK_INTERVAL_MS out of range: %d", c.ChunkIntervalMS)
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("MURMUR_RETENTION_DAYS must be positive: %d", c.RetentionDays)
	}
	return nil
}

// New creates a Config by parsing MURMUR_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("MURMUR", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("data_dir", cfg.DataDir).
		Str("index_backend", cfg.IndexBackend).
		Int("chunk_interval_ms", cfg.ChunkIntervalMS).
		Int("retention_days", cfg.RetentionDays).
		Bool("sweep_on_start", cfg.SweepOnStart).
		Msg("Configuration loaded")

	return &cfg, nil
}

// RecordingsDir returns the root of the physical recording store.
func (c *Config) RecordingsDir() string {
	return filepath.Join(c.DataDir, "recordings")
}

// IndexPath returns the backing path for the metadata index document.
func (c *Config) IndexPath() string {
	if c.IndexBackend == "sqlite" {
		return filepath.Join(c.DataDir, "index.db")
	}
	return filepath.Join(c.DataDir, "index.json")
}

// HTTPAddr returns the HTTP server listen address.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// ChunkInterval returns the capture flush interval as a duration.
func (c *Config) ChunkInterval() time.Duration {
	return time.Duration(c.ChunkIntervalMS) * time.Millisecond
}

// RetentionWindow returns the age beyond which conversation directories are
// evicted by the sweeper.
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}
