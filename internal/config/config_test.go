package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/showcase/internal/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, 500*time.Millisecond, cfg.Pipeline.Debounce.Duration())
	assert.Equal(t, []string{"Khronos Official", "Staff Picks"}, cfg.Pipeline.PriorityTags)
	assert.Equal(t, []string{"category", "language", "platform", "api", "license"}, cfg.Pipeline.Dimensions)
	assert.Equal(t, "first_match", cfg.Pipeline.Bucketing)
	assert.Equal(t, DefaultCatalogPath, cfg.Catalog.Path)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, "showcase.results", cfg.NATS.Subject)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "showcase", cfg.Telemetry.ServiceName)
	assert.Equal(t, 1.0, cfg.Telemetry.Sampling.Rate)

	require.NoError(t, cfg.Validate())
}

func TestDefault_PriorityTagsAreCopied(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.PriorityTags[0] = "changed"
	assert.Equal(t, "Khronos Official", DefaultPriorityTags[0])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "port too low", modify: func(c *Config) { c.Server.Port = 0 }, wantErr: "invalid server port"},
		{name: "port too high", modify: func(c *Config) { c.Server.Port = 70000 }, wantErr: "invalid server port"},
		{name: "zero shutdown timeout", modify: func(c *Config) { c.Server.ShutdownTimeout = 0 }, wantErr: "shutdown timeout"},
		{name: "negative rate limit", modify: func(c *Config) { c.Server.RateLimit = -1 }, wantErr: "rate limit"},
		{name: "zero burst", modify: func(c *Config) { c.Server.RateBurst = 0 }, wantErr: "rate burst"},
		{name: "duplicate dimension", modify: func(c *Config) { c.Pipeline.Dimensions = []string{"api", "api"} }, wantErr: "dimensions"},
		{name: "custom dimension", modify: func(c *Config) { c.Pipeline.Dimensions = []string{"api", "engine"} }},
		{name: "unknown bucketing", modify: func(c *Config) { c.Pipeline.Bucketing = "random" }, wantErr: "bucketing"},
		{name: "fanout bucketing", modify: func(c *Config) { c.Pipeline.Bucketing = "fanout" }},
		{name: "blank priority tag", modify: func(c *Config) { c.Pipeline.PriorityTags = []string{" "} }, wantErr: "priority tags"},
		{name: "no priority tags", modify: func(c *Config) { c.Pipeline.PriorityTags = []string{} }},
		{name: "empty catalog path", modify: func(c *Config) { c.Catalog.Path = "" }, wantErr: "catalog path"},
		{name: "nats without url", modify: func(c *Config) { c.NATS.Enabled = true; c.NATS.URL = "" }, wantErr: "nats url"},
		{name: "nats url ignored when disabled", modify: func(c *Config) { c.NATS.URL = "" }},
		{name: "trace level", modify: func(c *Config) { c.Logging.Level = "trace" }},
		{name: "bad level", modify: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "log level"},
		{name: "bad format", modify: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "log format"},
		{name: "telemetry remote insecure", modify: func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = "collector.example.com:4317"
		}, wantErr: "telemetry"},
		{name: "telemetry local", modify: func(c *Config) { c.Telemetry.Enabled = true }},
		{name: "telemetry http protocol", modify: func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Protocol = "http"
		}},
		{name: "otel logs without telemetry", modify: func(c *Config) { c.Logging.OTEL = true }, wantErr: "logging.otel"},
		{name: "otel logs with telemetry", modify: func(c *Config) {
			c.Logging.OTEL = true
			c.Telemetry.Enabled = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "trace"
	cfg.Logging.Format = "console"

	lc, err := cfg.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, logging.TraceLevel, lc.Level)
	assert.Equal(t, "console", lc.Format)
	require.NoError(t, lc.Validate())

	cfg.Logging.Level = "debug"
	lc, err = cfg.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lc.Level)
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandHome("~/.config/showcase/catalog.yaml")
	require.NoError(t, err)
	assert.Equal(t, home+"/.config/showcase/catalog.yaml", got)

	got, err = ExpandHome("/srv/catalog.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/srv/catalog.yaml", got)

	got, err = ExpandHome("~other/catalog.yaml")
	require.NoError(t, err)
	assert.Equal(t, "~other/catalog.yaml", got)
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("250ms")))
	assert.Equal(t, 250*time.Millisecond, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))

	out, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.JSONEq(t, `"2s"`, string(out))
}

func TestSecret_Redacted(t *testing.T) {
	s := Secret("s3cr3t")

	assert.Equal(t, "s3cr3t", s.Value())
	assert.True(t, s.IsSet())
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.NotContains(t, fmt.Sprintf("%#v", s), "s3cr3t")

	out, err := json.Marshal(NATSConfig{Token: s})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "s3cr3t")

	var empty Secret
	assert.False(t, empty.IsSet())
	assert.Equal(t, "", empty.String())
}
