// Package config holds the tunables of the gardena tool and builds the
// logger and component options from them.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	goble "github.com/srg/gardena/internal/device/go-ble"
	"github.com/srg/gardena/internal/session"
	"github.com/srg/gardena/pkg/connection"
)

// Config holds application configuration
type Config struct {
	LogLevel string `yaml:"log_level" default:"info"`

	// DisconnectDelay is how long an idle link stays up for reuse.
	DisconnectDelay time.Duration `yaml:"disconnect_delay" default:"1s"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" default:"30s"`
	ConnectAttempts int           `yaml:"connect_attempts" default:"3"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"5s"`
	ScanTimeout     time.Duration `yaml:"scan_timeout" default:"10s"`

	ClockDriftTolerance time.Duration `yaml:"clock_drift_tolerance" default:"60s"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML file over the defaults. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("connect_attempts must be at least 1, got %d", c.ConnectAttempts)
	}
	for name, d := range map[string]time.Duration{
		"disconnect_delay":      c.DisconnectDelay,
		"connect_timeout":       c.ConnectTimeout,
		"read_timeout":          c.ReadTimeout,
		"scan_timeout":          c.ScanTimeout,
		"clock_drift_tolerance": c.ClockDriftTolerance,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	return nil
}

// Level is the parsed log level; unparsable levels fall back to info.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.Level())

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}

// ConnectOptions configures the BLE stack.
func (c *Config) ConnectOptions(logger *logrus.Logger) goble.Options {
	return goble.Options{
		ConnectTimeout:  c.ConnectTimeout,
		ConnectAttempts: c.ConnectAttempts,
		ReadTimeout:     c.ReadTimeout,
		Logger:          logger,
	}
}

// CacheOptions configures the cached connection.
func (c *Config) CacheOptions(logger *logrus.Logger) []connection.Option {
	return []connection.Option{
		connection.WithDisconnectDelay(c.DisconnectDelay),
		connection.WithLogger(logger),
	}
}

// SessionOptions configures device sessions.
func (c *Config) SessionOptions(logger *logrus.Logger) []session.Option {
	return []session.Option{
		session.WithLogger(logger),
		session.WithClockDriftTolerance(c.ClockDriftTolerance),
	}
}
