// Package goble implements the device collaborators on top of go-ble/ble.
package goble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/srg/gardena/internal/device"
)

const (
	DefaultConnectTimeout  = 30 * time.Second
	DefaultConnectAttempts = 3
	DefaultRetryBackoff    = 500 * time.Millisecond

	// DefaultReadTimeout bounds a single characteristic read or write so an
	// unresponsive peripheral cannot block a caller forever.
	DefaultReadTimeout = 5 * time.Second
)

// Client is the part of ble.Client the stack uses.
type Client interface {
	Addr() ble.Addr
	DiscoverProfile(force bool) (*ble.Profile, error)
	ReadCharacteristic(c *ble.Characteristic) ([]byte, error)
	WriteCharacteristic(c *ble.Characteristic, value []byte, noRsp bool) error
	CancelConnection() error
}

// Central is the part of ble.Device the stack uses.
type Central interface {
	Dial(ctx context.Context, address string) (Client, error)
	Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error
	Stop() error
}

type bleCentral struct {
	dev ble.Device
}

// NewCentral adapts a ble.Device.
func NewCentral(dev ble.Device) Central {
	return &bleCentral{dev: dev}
}

func (c *bleCentral) Dial(ctx context.Context, address string) (Client, error) {
	cl, err := c.dev.Dial(ctx, ble.NewAddr(address))
	if err != nil {
		return nil, err
	}
	return cl, nil
}

func (c *bleCentral) Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error {
	return c.dev.Scan(ctx, allowDup, h)
}

func (c *bleCentral) Stop() error {
	return c.dev.Stop()
}

// Options tune connection establishment. Zero values select the defaults.
type Options struct {
	ConnectTimeout  time.Duration
	ConnectAttempts int
	RetryBackoff    time.Duration
	ReadTimeout     time.Duration
	Logger          *logrus.Logger
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.ConnectAttempts <= 0 {
		o.ConnectAttempts = DefaultConnectAttempts
	}
	if o.RetryBackoff < 0 {
		o.RetryBackoff = 0
	} else if o.RetryBackoff == 0 {
		o.RetryBackoff = DefaultRetryBackoff
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.Logger == nil {
		o.Logger = logrus.New()
	}
	return o
}

// Stack implements device.Stack. The host adapter is opened on first use
// through DeviceFactory unless a Central was supplied.
type Stack struct {
	opts   Options
	logger *logrus.Logger

	mu      sync.Mutex
	central Central
	owned   bool
}

var _ device.Stack = (*Stack)(nil)

func NewStack(opts Options) *Stack {
	opts = opts.withDefaults()
	return &Stack{opts: opts, logger: opts.Logger}
}

// NewStackWithCentral uses c instead of opening the host adapter.
func NewStackWithCentral(c Central, opts Options) *Stack {
	s := NewStack(opts)
	s.central = c
	return s
}

func (s *Stack) getCentral() (Central, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.central != nil {
		return s.central, nil
	}

	dev, err := DeviceFactory()
	if err != nil {
		s.logger.WithError(err).Error("Failed to create BLE device")
		return nil, fmt.Errorf("failed to create BLE device: %w", device.NormalizeError(err))
	}
	s.central = NewCentral(dev)
	s.owned = true
	return s.central, nil
}

// Connect dials address and discovers its GATT profile, retrying failed
// attempts with a linear backoff.
func (s *Stack) Connect(ctx context.Context, address string) (device.Handle, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("device address is empty")
	}

	central, err := s.getCentral()
	if err != nil {
		return nil, err
	}

	var lastErr error
	attempts := s.opts.ConnectAttempts
	for attempt := 1; attempt <= attempts; attempt++ {
		h, err := s.connectOnce(ctx, central, address)
		if err == nil {
			return h, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, device.ErrBluetoothOff) {
			return nil, err
		}

		s.logger.WithFields(logrus.Fields{
			"address": address,
			"attempt": attempt,
			"of":      attempts,
		}).WithError(err).Warn("Connection attempt failed")

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * s.opts.RetryBackoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to connect to device with address %q after %d attempts: %w", address, attempts, lastErr)
}

func (s *Stack) connectOnce(ctx context.Context, central Central, address string) (*Handle, error) {
	connCtx, cancel := context.WithTimeout(ctx, s.opts.ConnectTimeout)
	defer cancel()

	s.logger.WithField("address", address).Debug("Dialing BLE device...")
	client, err := central.Dial(connCtx, address)
	if err != nil {
		return nil, device.NormalizeError(err)
	}

	s.logger.WithField("address", address).Debug("Discovering services and characteristics...")
	profile, err := client.DiscoverProfile(true)
	if err != nil {
		if cancelErr := client.CancelConnection(); cancelErr != nil {
			s.logger.WithField("cancel_error", cancelErr).Warn("Failed to cancel connection during profile discovery failure")
		}
		return nil, fmt.Errorf("failed to discover profile: %w", device.NormalizeError(err))
	}

	h := newHandle(client, address, profile, s.opts.ReadTimeout, s.logger)
	s.logger.WithFields(logrus.Fields{
		"address":         address,
		"services":        len(profile.Services),
		"characteristics": len(h.order),
	}).Info("BLE device connected successfully")
	return h, nil
}

// Disconnect cancels the connection behind h.
func (s *Stack) Disconnect(_ context.Context, h device.Handle) error {
	handle, ok := h.(*Handle)
	if !ok {
		return fmt.Errorf("%w: handle %T was not created by this stack", device.ErrUnsupported, h)
	}
	return handle.close()
}

// Scanner returns a scanner sharing the stack's adapter.
func (s *Stack) Scanner() (device.ScanningDevice, error) {
	central, err := s.getCentral()
	if err != nil {
		return nil, err
	}
	return NewScannerWithCentral(central), nil
}

// Close stops the host adapter if the stack opened it.
func (s *Stack) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.central == nil || !s.owned {
		return nil
	}
	err := s.central.Stop()
	s.central = nil
	s.owned = false
	return err
}
