// Package config loads chartflow configuration from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/barasalah2/chartflow/translator"
)

// Config holds all chartflow configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	AI        AIConfig        `yaml:"ai"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64  `yaml:"max_body_bytes"`
}

// StorageConfig configures persistence.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	MirrorDSN    string `yaml:"mirror_dsn"` // optional Postgres mirror
}

// AIConfig configures the visualization service.
type AIConfig struct {
	Provider string `yaml:"provider"` // http | gemini
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// DashboardConfig configures chart composition.
type DashboardConfig struct {
	Workers     int  `yaml:"workers"`
	CacheSize   int  `yaml:"cache_size"`
	StrictKinds bool `yaml:"strict_kinds"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "15s",
			WriteTimeout:    "90s",
			ShutdownTimeout: "10s",
			MaxBodyBytes:    10 << 20,
		},
		Storage: StorageConfig{
			DatabasePath: filepath.Join(".chartflow", "chartflow.db"),
		},
		AI: AIConfig{
			Provider: "http",
			Timeout:  "60s",
		},
		Dashboard: DashboardConfig{
			Workers:   4,
			CacheSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("CHARTFLOW_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if path := os.Getenv("CHARTFLOW_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if dsn := os.Getenv("CHARTFLOW_MIRROR_DSN"); dsn != "" {
		c.Storage.MirrorDSN = dsn
	}
	if url := os.Getenv("CHARTFLOW_AI_ENDPOINT"); url != "" {
		c.AI.Endpoint = url
		c.AI.Provider = "http"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.AI.APIKey = key
		if c.AI.Endpoint == "" {
			c.AI.Provider = "gemini"
		}
	}
	if level := os.Getenv("CHARTFLOW_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if n, err := strconv.Atoi(os.Getenv("CHARTFLOW_WORKERS")); err == nil && n > 0 {
		c.Dashboard.Workers = n
	}
}

// ============================================================================
// DURATIONS
// ============================================================================

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetReadTimeout returns the server read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the server write timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 90*time.Second)
}

// GetShutdownTimeout returns the graceful shutdown budget.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// GetAITimeout returns the visualization service timeout.
func (c *Config) GetAITimeout() time.Duration {
	return parseDuration(c.AI.Timeout, 60*time.Second)
}

// Translator converts the AI section into a translator.Config.
func (c *Config) Translator() translator.Config {
	return translator.Config{
		Provider: c.AI.Provider,
		Endpoint: c.AI.Endpoint,
		APIKey:   c.AI.APIKey,
		Model:    c.AI.Model,
		Timeout:  c.GetAITimeout(),
	}
}

// ============================================================================
// VALIDATION
// ============================================================================

// ValidProviders lists the supported visualization service providers.
var ValidProviders = []string{"http", "gemini"}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address not configured")
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("database path not configured (set storage.database_path or CHARTFLOW_DB)")
	}
	for name, v := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"ai.timeout":              c.AI.Timeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}

	validProvider := false
	for _, p := range ValidProviders {
		if c.AI.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid AI provider: %s (valid: %v)", c.AI.Provider, ValidProviders)
	}
	if c.AI.Provider == "gemini" && c.AI.APIKey == "" {
		return fmt.Errorf("gemini provider requires an API key (set GEMINI_API_KEY)")
	}
	if c.Dashboard.Workers < 1 {
		return fmt.Errorf("dashboard.workers must be at least 1")
	}
	if c.Dashboard.CacheSize < 0 {
		return fmt.Errorf("dashboard.cache_size must not be negative")
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (valid: json, console)", c.Logging.Format)
	}
	return nil
}
