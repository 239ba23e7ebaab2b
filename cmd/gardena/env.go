package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/gardena/internal/codec"
	"github.com/srg/gardena/internal/device"
	goble "github.com/srg/gardena/internal/device/go-ble"
	"github.com/srg/gardena/internal/gardena"
	"github.com/srg/gardena/internal/session"
	"github.com/srg/gardena/pkg/config"
	"github.com/srg/gardena/pkg/connection"
)

// Replaced by tests to run commands without a radio.
var (
	newStack = func(cfg *config.Config, logger *logrus.Logger) device.Stack {
		return goble.NewStack(cfg.ConnectOptions(logger))
	}
	newScanningDevice = goble.NewScanner
)

// env is what every command needs: configuration, logger and catalogue.
type env struct {
	cfg      *config.Config
	logger   *logrus.Logger
	registry *codec.Registry
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	var fallback *logrus.Level
	if path != "" {
		level := cfg.Level()
		fallback = &level
	}
	logger, err := configureLogger(cmd, "verbose", fallback)
	if err != nil {
		return nil, err
	}

	registry, err := gardena.NewRegistry()
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, registry: registry}, nil
}

// openSession connects lazily: the link is made by the first operation.
// The returned func closes the link and the adapter.
func (e *env) openSession(address string) (*session.Session, func()) {
	stack := newStack(e.cfg, e.logger)
	conn := connection.New(stack, connection.StaticAddress(device.NormalizeAddress(address)),
		e.cfg.CacheOptions(e.logger)...)
	sess := session.New(conn, e.registry, e.cfg.SessionOptions(e.logger)...)

	return sess, func() {
		if err := conn.Close(context.Background()); err != nil {
			e.logger.WithError(err).Warn("Failed to disconnect")
		}
		if c, ok := stack.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				e.logger.WithError(err).Warn("Failed to release BLE adapter")
			}
		}
	}
}

// signalContext is cancelled by Ctrl+C or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
