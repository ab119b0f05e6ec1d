// Package config provides configuration loading for showcase.
//
// Configuration comes from a YAML file overridden by environment variables.
// See LoadWithFile for precedence and the environment mapping.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/showcase/internal/logging"
	"github.com/fyrsmithlabs/showcase/internal/project"
	"github.com/fyrsmithlabs/showcase/internal/telemetry"
)

// Defaults.
const (
	DefaultHost            = "127.0.0.1"
	DefaultHTTPPort        = 9090
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimit       = 10.0
	DefaultRateBurst       = 20
	DefaultDebounce        = 500 * time.Millisecond
	DefaultBucketing       = "first_match"
	DefaultCatalogPath     = "~/.config/showcase/catalog.yaml"
	DefaultNATSURL         = "nats://127.0.0.1:4222"
	DefaultNATSSubject     = "showcase.results"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
)

// DefaultPriorityTags are the bucket keys shown ahead of untagged projects.
var DefaultPriorityTags = []string{"Khronos Official", "Staff Picks"}

// Config holds the complete showcase configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Pipeline  PipelineConfig   `koanf:"pipeline"`
	Catalog   CatalogConfig    `koanf:"catalog"`
	NATS      NATSConfig       `koanf:"nats"`
	Logging   LoggingConfig    `koanf:"logging"`
	Telemetry telemetry.Config `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	RateLimit       float64  `koanf:"rate_limit"` // mutating requests per second per client
	RateBurst       int      `koanf:"rate_burst"`
}

// Addr returns host:port for the listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PipelineConfig holds results pipeline configuration.
type PipelineConfig struct {
	Debounce     Duration `koanf:"debounce"`
	PriorityTags []string `koanf:"priority_tags"`
	Dimensions   []string `koanf:"dimensions"`
	Bucketing    string   `koanf:"bucketing"` // "first_match" or "fanout"
}

// CatalogConfig locates the project catalog.
type CatalogConfig struct {
	Path  string `koanf:"path"`
	Watch bool   `koanf:"watch"`
}

// NATSConfig holds the optional results publisher configuration.
type NATSConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
	Token   Secret `koanf:"token"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	OTEL   bool   `koanf:"otel"` // ship records over OTLP; needs telemetry.enabled
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Telemetry: *telemetry.NewDefaultConfig()}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultHTTPPort
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = DefaultRateLimit
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = DefaultRateBurst
	}

	// Pipeline defaults
	if cfg.Pipeline.Debounce == 0 {
		cfg.Pipeline.Debounce = Duration(DefaultDebounce)
	}
	if cfg.Pipeline.PriorityTags == nil {
		cfg.Pipeline.PriorityTags = append([]string(nil), DefaultPriorityTags...)
	}
	if len(cfg.Pipeline.Dimensions) == 0 {
		cfg.Pipeline.Dimensions = project.DefaultDimensions().Strings()
	}
	if cfg.Pipeline.Bucketing == "" {
		cfg.Pipeline.Bucketing = DefaultBucketing
	}

	// Catalog defaults
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}

	// NATS defaults
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = DefaultNATSURL
	}
	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = DefaultNATSSubject
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	cfg.Telemetry.ApplyDefaults()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %v", c.Server.RateLimit)
	}
	if c.Server.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1, got %d", c.Server.RateBurst)
	}

	if c.Pipeline.Debounce < 0 {
		return errors.New("debounce cannot be negative")
	}
	if _, err := project.ParseDimensions(c.Pipeline.Dimensions); err != nil {
		return fmt.Errorf("invalid pipeline dimensions: %w", err)
	}
	switch c.Pipeline.Bucketing {
	case "first_match", "fanout":
	default:
		return fmt.Errorf("invalid bucketing mode %q (must be first_match or fanout)", c.Pipeline.Bucketing)
	}
	for _, tag := range c.Pipeline.PriorityTags {
		if strings.TrimSpace(tag) == "" {
			return errors.New("priority tags cannot be empty")
		}
	}

	if c.Catalog.Path == "" {
		return errors.New("catalog path is required")
	}

	if c.NATS.Enabled {
		if c.NATS.URL == "" {
			return errors.New("nats url required when nats is enabled")
		}
		if c.NATS.Subject == "" {
			return errors.New("nats subject required when nats is enabled")
		}
	}

	if _, err := logging.LevelFromString(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid log format %q (must be json or console)", c.Logging.Format)
	}

	if c.Logging.OTEL && !c.Telemetry.Enabled {
		return errors.New("logging.otel requires telemetry.enabled")
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("invalid telemetry config: %w", err)
	}

	return nil
}

// LoggerConfig converts the logging section into a logging.Config.
func (c *Config) LoggerConfig() (*logging.Config, error) {
	level, err := logging.LevelFromString(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	lc := logging.NewDefaultConfig()
	lc.Level = level
	lc.Format = c.Logging.Format
	lc.Output.OTEL = c.Logging.OTEL
	return lc, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
