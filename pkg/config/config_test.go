package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gardena.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.DisconnectDelay)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 3, cfg.ConnectAttempts)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.ScanTimeout)
	assert.Equal(t, time.Minute, cfg.ClockDriftTolerance)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("file overrides only the keys it sets", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "log_level: debug\ndisconnect_delay: 2500ms\nconnect_attempts: 5\n"))
		require.NoError(t, err)

		assert.Equal(t, logrus.DebugLevel, cfg.Level())
		assert.Equal(t, 2500*time.Millisecond, cfg.DisconnectDelay)
		assert.Equal(t, 5, cfg.ConnectAttempts)
		assert.Equal(t, 30*time.Second, cfg.ConnectTimeout, "unset keys MUST keep their defaults")
	})

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown level", "log_level: chatty\n", "not a valid logrus Level"},
		{"zero attempts", "connect_attempts: 0\n", "connect_attempts must be at least 1"},
		{"negative delay", "disconnect_delay: -1s\n", "disconnect_delay must not be negative"},
		{"malformed yaml", "log_level: [\n", "failed to parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestConfig_NewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		want     logrus.Level
	}{
		{
			name:     "creates logger with debug level",
			logLevel: "debug",
			want:     logrus.DebugLevel,
		},
		{
			name:     "creates logger with warn level",
			logLevel: "warn",
			want:     logrus.WarnLevel,
		},
		{
			name:     "falls back to info on an unknown level",
			logLevel: "loud",
			want:     logrus.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				LogLevel: tt.logLevel,
			}

			logger := cfg.NewLogger()

			assert.NotNil(t, logger)
			assert.Equal(t, tt.want, logger.GetLevel())

			// Verify formatter is set correctly
			formatter, ok := logger.Formatter.(*logrus.TextFormatter)
			assert.True(t, ok)
			assert.True(t, formatter.FullTimestamp)
			assert.Equal(t, time.RFC3339, formatter.TimestampFormat)
		})
	}
}

func TestConfig_ComponentOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConnectAttempts = 2
	logger := logrus.New()

	opts := cfg.ConnectOptions(logger)
	assert.Equal(t, 30*time.Second, opts.ConnectTimeout)
	assert.Equal(t, 2, opts.ConnectAttempts)
	assert.Equal(t, 5*time.Second, opts.ReadTimeout)
	assert.Same(t, logger, opts.Logger)

	assert.Len(t, cfg.CacheOptions(logger), 2)
	assert.Len(t, cfg.SessionOptions(logger), 2)
}
