package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/fyrsmithlabs/showcase/internal/telemetry"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// ErrInsecureConfigFile is returned for config files other users can modify.
var ErrInsecureConfigFile = errors.New("insecure config file")

// sections are the top-level keys environment variables may set.
var sections = map[string]struct{}{
	"server":    {},
	"pipeline":  {},
	"catalog":   {},
	"nats":      {},
	"logging":   {},
	"telemetry": {},
}

// listKeys hold comma-separated values when set from the environment.
var listKeys = map[string]struct{}{
	"pipeline.priority_tags": {},
	"pipeline.dimensions":    {},
}

// DefaultPath returns ~/.config/showcase/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "showcase", "config.yaml"), nil
}

// LoadWithFile loads configuration from a YAML file, then overrides it with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (SERVER_HTTP_PORT, PIPELINE_DEBOUNCE, etc.)
//  2. YAML config file (~/.config/showcase/config.yaml)
//  3. Hardcoded defaults
//
// A missing file is not an error. An existing file must be a regular file no
// larger than 1MB that is not writable by group or others.
//
// # Environment Variable Mapping
//
// The first underscore separates the section from the field name:
//
//	SERVER_HTTP_PORT -> server.http_port
//	PIPELINE_PRIORITY_TAGS -> pipeline.priority_tags (comma-separated)
//	NATS_TOKEN -> nats.token
//	TELEMETRY_ENDPOINT -> telemetry.endpoint
//
// Variables whose prefix is not a known section are ignored.
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	content, err := readConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	if content != nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Telemetry starts from its defaults so a partial section keeps the
	// sampling rate and metrics switch.
	cfg := Config{Telemetry: *telemetry.NewDefaultConfig()}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envTransform maps SECTION_FIELD_NAME to section.field_name. An empty key
// tells koanf to skip the variable.
func envTransform(key, value string) (string, interface{}) {
	lower := strings.ToLower(key)
	section, field, ok := strings.Cut(lower, "_")
	if !ok || field == "" {
		return "", nil
	}
	if _, known := sections[section]; !known {
		return "", nil
	}

	path := section + "." + field
	if _, list := listKeys[path]; list {
		parts := strings.Split(value, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		return path, values
	}
	return path, value
}

// readConfigFile returns the file content, or nil when the file does not exist.
// The file is opened once and validated through its descriptor.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return nil, fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(content) > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large (max %d bytes)", maxConfigFileSize)
	}
	return content, nil
}

// validateConfigFileProperties checks file type, permissions and size.
func validateConfigFileProperties(info os.FileInfo) error {
	if !info.Mode().IsRegular() {
		return fmt.Errorf("config file is not a regular file: %s", info.Name())
	}

	if perm := info.Mode().Perm(); perm&0o022 != 0 {
		return fmt.Errorf("%w: permissions %v allow group or other writes", ErrInsecureConfigFile, perm)
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}

// EnsureConfigDir creates the showcase config directory if it doesn't exist.
// The directory is created with 0700 permissions.
func EnsureConfigDir() error {
	p, err := DefaultPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return nil
}
