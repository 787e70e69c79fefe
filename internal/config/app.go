package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the application config file.
const (
	EnvDataDir     = "PROJECTOR_DATA_DIR"
	EnvAddr        = "PROJECTOR_ADDR"
	EnvRefreshCron = "PROJECTOR_REFRESH_CRON"
	EnvLogLevel    = "PROJECTOR_LOG_LEVEL"
)

// AppConfig configures the server and the reference data refresh job.
type AppConfig struct {
	DataDir     string `yaml:"data_dir" validate:"required"`
	Addr        string `yaml:"addr" validate:"required"`
	RefreshCron string `yaml:"refresh_cron"` // empty disables scheduled refresh
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultAppConfig returns the built-in settings.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DataDir:     "data",
		Addr:        ":8080",
		RefreshCron: "@hourly",
		LogLevel:    "info",
	}
}

// LoadAppConfig layers the file at path (optional) and the environment over the defaults.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *AppConfig) applyEnv() {
	if v, ok := os.LookupEnv(EnvDataDir); ok && v != "" {
		c.DataDir = v
	}
	if v, ok := os.LookupEnv(EnvAddr); ok && v != "" {
		c.Addr = v
	}
	// Set but empty disables the refresh job.
	if v, ok := os.LookupEnv(EnvRefreshCron); ok {
		c.RefreshCron = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

// SlogLevel maps LogLevel onto slog.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
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
