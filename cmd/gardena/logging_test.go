package main

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggingCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().Bool("verbose", false, "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestConfigureLogger(t *testing.T) {
	warn := logrus.WarnLevel

	tests := []struct {
		name     string
		args     []string
		fallback *logrus.Level
		want     logrus.Level
		wantErr  bool
	}{
		{name: "silent by default", want: logrus.PanicLevel},
		{name: "fallback", fallback: &warn, want: logrus.WarnLevel},
		{name: "verbose beats fallback", args: []string{"--verbose"}, fallback: &warn, want: logrus.DebugLevel},
		{name: "log level beats verbose", args: []string{"--verbose", "--log-level", "error"}, want: logrus.ErrorLevel},
		{name: "info", args: []string{"--log-level", "info"}, want: logrus.InfoLevel},
		{name: "invalid", args: []string{"--log-level", "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := configureLogger(newLoggingCmd(t, tt.args...), "verbose", tt.fallback)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestConfigureLoggerWritesToStderr(t *testing.T) {
	// GOAL: Verify logs go to the command's stderr and never to stdout
	//
	// TEST SCENARIO: debug logger on a command with separate buffers → message only in stderr
	cmd := newLoggingCmd(t, "--verbose")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	logger, err := configureLogger(cmd, "verbose", nil)
	require.NoError(t, err)
	logger.Debug("connecting")

	assert.Contains(t, stderr.String(), "connecting", "log MUST be written to stderr")
	assert.Empty(t, stdout.String(), "log MUST NOT pollute stdout")
}
