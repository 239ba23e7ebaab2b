package goble

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/srg/gardena/internal/device"
	"github.com/srg/gardena/internal/groutine"
)

// BLECharacteristic is a discovered characteristic.
type BLECharacteristic struct {
	uuid        string
	serviceUUID string
	properties  device.Properties
	BLEChar     *ble.Characteristic
}

func (c *BLECharacteristic) UUID() string                  { return c.uuid }
func (c *BLECharacteristic) ServiceUUID() string           { return c.serviceUUID }
func (c *BLECharacteristic) Properties() device.Properties { return c.properties }

// Handle is a connected peripheral with its discovered profile.
type Handle struct {
	client      Client
	address     string
	readTimeout time.Duration
	logger      *logrus.Logger

	chars map[string]*BLECharacteristic
	order []*BLECharacteristic

	connected atomic.Bool
	closed    chan struct{}
	closing   atomic.Bool
}

var _ device.Handle = (*Handle)(nil)

func newHandle(client Client, address string, profile *ble.Profile, readTimeout time.Duration, logger *logrus.Logger) *Handle {
	h := &Handle{
		client:      client,
		address:     address,
		readTimeout: readTimeout,
		logger:      logger,
		chars:       make(map[string]*BLECharacteristic),
		closed:      make(chan struct{}),
	}
	h.connected.Store(true)

	for _, svc := range profile.Services {
		svcUUID := device.NormalizeUUID(svc.UUID.String())
		for _, c := range svc.Characteristics {
			uuid := device.NormalizeUUID(c.UUID.String())
			if uuid == "" {
				continue
			}
			if _, dup := h.chars[uuid]; dup {
				logger.WithFields(logrus.Fields{
					"service_uuid": svcUUID,
					"char_uuid":    uuid,
				}).Debug("Characteristic exposed by several services, keeping the first")
				continue
			}
			ch := &BLECharacteristic{
				uuid:        uuid,
				serviceUUID: svcUUID,
				properties:  NewProperties(c.Property),
				BLEChar:     c,
			}
			h.chars[uuid] = ch
			h.order = append(h.order, ch)
		}
	}

	h.monitor()
	return h
}

// monitor watches the client's Disconnected channel when the platform
// provides one.
func (h *Handle) monitor() {
	watcher, ok := h.client.(interface{ Disconnected() <-chan struct{} })
	if !ok {
		h.logger.Debug("Client does not support Disconnected() channel")
		return
	}
	groutine.Go(context.Background(), "ble-connection-monitor", func(ctx context.Context) {
		select {
		case <-watcher.Disconnected():
			if h.connected.CompareAndSwap(true, false) {
				h.logger.WithField("address", h.address).Warn("Peripheral reported disconnection")
			}
		case <-h.closed:
		}
	})
}

func (h *Handle) Address() string {
	return h.address
}

func (h *Handle) IsConnected() bool {
	return h.connected.Load()
}

func (h *Handle) Characteristic(uuid string) (device.CharacteristicInfo, bool) {
	c, ok := h.chars[device.NormalizeUUID(uuid)]
	if !ok {
		return nil, false
	}
	return c, true
}

// Characteristics returns characteristics in discovery order.
func (h *Handle) Characteristics() []device.CharacteristicInfo {
	out := make([]device.CharacteristicInfo, 0, len(h.order))
	for _, c := range h.order {
		out = append(out, c)
	}
	return out
}

func (h *Handle) lookup(uuid string) (*BLECharacteristic, error) {
	c, ok := h.chars[device.NormalizeUUID(uuid)]
	if !ok {
		return nil, &device.NotFoundError{UUID: uuid}
	}
	if !h.IsConnected() {
		return nil, device.ErrNotConnected
	}
	return c, nil
}

// ReadValue reads the current value, bounded by ctx and the read timeout.
func (h *Handle) ReadValue(ctx context.Context, uuid string) ([]byte, error) {
	c, err := h.lookup(uuid)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = h.withTimeout(ctx, "read", c.uuid, func() error {
		var rerr error
		data, rerr = h.client.ReadCharacteristic(c.BLEChar)
		return rerr
	})
	return data, err
}

// WriteValue writes data, waiting for the peripheral's response when ack is set.
func (h *Handle) WriteValue(ctx context.Context, uuid string, data []byte, ack bool) error {
	c, err := h.lookup(uuid)
	if err != nil {
		return err
	}

	return h.withTimeout(ctx, "write", c.uuid, func() error {
		return h.client.WriteCharacteristic(c.BLEChar, data, !ack)
	})
}

// withTimeout runs op in its own goroutine since go-ble calls take no context.
func (h *Handle) withTimeout(ctx context.Context, op, uuid string, fn func() error) error {
	done := make(chan error, 1)
	groutine.Go(ctx, "ble-"+op, func(context.Context) {
		done <- fn()
	})

	timer := time.NewTimer(h.readTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to %s characteristic %s: %w", op, uuid, device.NormalizeError(err))
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: %s characteristic %s after %v", device.ErrTimeout, op, uuid, h.readTimeout)
	}
}

func (h *Handle) close() error {
	if !h.closing.CompareAndSwap(false, true) {
		return nil
	}
	h.connected.Store(false)
	close(h.closed)

	h.logger.WithField("address", h.address).Info("Disconnecting BLE device...")
	if err := h.client.CancelConnection(); err != nil {
		h.logger.WithError(err).Warn("BLE device disconnected with errors")
		return device.NormalizeError(err)
	}
	h.logger.Info("BLE device disconnected successfully")
	return nil
}
