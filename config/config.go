package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete peer certificate service configuration
type Config struct {
	Fingerprint FingerprintConfig `yaml:"fingerprint" json:"fingerprint"`
	Session     SessionConfig     `yaml:"session" json:"session"`
	Registry    RegistryConfig    `yaml:"registry" json:"registry"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
}

// FingerprintConfig defines certificate fingerprint configuration
type FingerprintConfig struct {
	Algorithm string `yaml:"algorithm" json:"algorithm"` // sha1, sha256
}

// SessionConfig defines peer session tracking configuration
type SessionConfig struct {
	TokenTTL        time.Duration `yaml:"token_ttl" json:"token_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
}

// RegistryConfig defines certificate registry configuration
type RegistryConfig struct {
	Path      string `yaml:"path" json:"path"`             // sqlite database path
	CacheSize int    `yaml:"cache_size" json:"cache_size"` // LRU cache entries
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`           // debug, info, warn, error
	Format    string `yaml:"format" json:"format"`         // json, logfmt, text
	Output    string `yaml:"output" json:"output"`         // stdout, stderr, file path
	AuditFile string `yaml:"audit_file" json:"audit_file"` // audit log file path
}

// Loader provides configuration loading functionality
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses configuration from file
func (l *Loader) Load(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Determine format by extension
	ext := filepath.Ext(path)

	var config Config
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	// Validate configuration
	if err := l.Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Set defaults
	l.setDefaults(&config)

	return &config, nil
}

// Validate checks configuration validity
func (l *Loader) Validate(config *Config) error {
	// Validate fingerprint algorithm
	switch strings.ToLower(config.Fingerprint.Algorithm) {
	case "sha1", "sha256", "":
		// valid
	default:
		return fmt.Errorf("invalid fingerprint algorithm: %s (must be sha1/sha256)", config.Fingerprint.Algorithm)
	}

	// Validate session durations
	if config.Session.TokenTTL < 0 {
		return fmt.Errorf("session.token_ttl must not be negative")
	}
	if config.Session.CleanupInterval < 0 {
		return fmt.Errorf("session.cleanup_interval must not be negative")
	}

	// Validate registry cache size
	if config.Registry.CacheSize < 0 {
		return fmt.Errorf("registry.cache_size must not be negative")
	}

	// Validate logging level
	switch config.Logging.Level {
	case "debug", "info", "warn", "error", "":
		// valid
	default:
		return fmt.Errorf("invalid logging level: %s", config.Logging.Level)
	}

	// Validate logging format
	switch config.Logging.Format {
	case "json", "logfmt", "text", "":
		// valid
	default:
		return fmt.Errorf("invalid logging format: %s", config.Logging.Format)
	}

	return nil
}

// setDefaults sets default values for optional fields
func (l *Loader) setDefaults(config *Config) {
	// Fingerprint defaults
	if config.Fingerprint.Algorithm == "" {
		config.Fingerprint.Algorithm = "sha256"
	}

	// Session defaults
	if config.Session.TokenTTL == 0 {
		config.Session.TokenTTL = 3600 * time.Second // 1 hour
	}
	if config.Session.CleanupInterval == 0 {
		config.Session.CleanupInterval = 300 * time.Second // 5 minutes
	}

	// Registry defaults
	if config.Registry.Path == "" {
		config.Registry.Path = "peercert.db"
	}
	if config.Registry.CacheSize == 0 {
		config.Registry.CacheSize = 256
	}

	// Logging defaults
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "json"
	}
	if config.Logging.Output == "" {
		config.Logging.Output = "stdout"
	}
}

// Watch monitors configuration file for changes (placeholder)
// This method can be extended with fsnotify or similar library
func (l *Loader) Watch(path string, callback func(*Config)) error {
	// Placeholder for future implementation
	// Could use github.com/fsnotify/fsnotify for file watching
	return fmt.Errorf("watch not implemented yet")
}
