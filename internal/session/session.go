// Package session reads and writes typed characteristics of one Gardena
// device over a shared cached connection.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/gardena/internal/codec"
	"github.com/srg/gardena/internal/device"
	"github.com/srg/gardena/internal/gardena"
)

// DefaultClockDriftTolerance is the largest device clock drift SyncClock
// leaves alone.
const DefaultClockDriftTolerance = 60 * time.Second

// Conn is the part of connection.CachedConnection a Session uses.
type Conn interface {
	Do(ctx context.Context, op string, fn func(ctx context.Context, h device.Handle) error) error
	Disconnect(ctx context.Context) error
}

// Status tells a found value from the two recoverable lookup failures.
type Status int

const (
	StatusValue Status = iota
	StatusNotFound
	StatusNoAccess
)

func (s Status) String() string {
	switch s {
	case StatusValue:
		return "value"
	case StatusNotFound:
		return "not_found"
	case StatusNoAccess:
		return "no_access"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of a Lookup. Value is only meaningful when Status
// is StatusValue.
type Result[T any] struct {
	Status Status
	Value  T
}

func (r Result[T]) Found() bool {
	return r.Status == StatusValue
}

// ValueOr returns the value, or fallback when there is none.
func (r Result[T]) ValueOr(fallback T) T {
	if r.Status != StatusValue {
		return fallback
	}
	return r.Value
}

type Option func(*Session)

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClockDriftTolerance(d time.Duration) Option {
	return func(s *Session) { s.tolerance = d }
}

// WithClockCharacteristic overrides the characteristic SyncClock uses.
func WithClockCharacteristic(c *codec.Characteristic[time.Time]) Option {
	return func(s *Session) { s.clock = c }
}

type Session struct {
	conn      Conn
	registry  *codec.Registry
	logger    *logrus.Logger
	tolerance time.Duration
	clock     *codec.Characteristic[time.Time]
}

// New creates a session. registry decodes values read by uuid; nil means
// the full Gardena catalogue.
func New(conn Conn, registry *codec.Registry, opts ...Option) *Session {
	if registry == nil {
		registry = gardena.MustRegistry()
	}
	s := &Session{
		conn:      conn,
		registry:  registry,
		logger:    logrus.New(),
		tolerance: DefaultClockDriftTolerance,
		clock:     gardena.UnixTimestamp,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Registry() *codec.Registry {
	return s.registry
}

// ReadRaw reads the bytes of characteristic uuid. It fails with
// device.NotFoundError when the device lacks uuid and with
// device.NoAccessError when uuid is not readable.
func (s *Session) ReadRaw(ctx context.Context, uuid string) ([]byte, error) {
	var data []byte
	err := s.conn.Do(ctx, "read", func(ctx context.Context, h device.Handle) error {
		info, ok := h.Characteristic(uuid)
		if !ok {
			return &device.NotFoundError{UUID: uuid}
		}
		if !device.CanRead(info.Properties()) {
			return &device.NoAccessError{UUID: uuid, Capability: "read"}
		}

		var err error
		data, err = h.ReadValue(ctx, info.UUID())
		return err
	})
	return data, err
}

// LookupRaw is ReadRaw with NotFound and NoAccess reported in the result.
func (s *Session) LookupRaw(ctx context.Context, uuid string) (Result[[]byte], error) {
	data, err := s.ReadRaw(ctx, uuid)
	return toResult(data, err)
}

// WriteRaw writes data to characteristic uuid, waiting for the device's
// response when ack is set. Unacknowledged writes are accepted by
// characteristics declaring either write property.
func (s *Session) WriteRaw(ctx context.Context, uuid string, data []byte, ack bool) error {
	return s.conn.Do(ctx, "write", func(ctx context.Context, h device.Handle) error {
		info, ok := h.Characteristic(uuid)
		if !ok {
			return &device.NotFoundError{UUID: uuid}
		}
		if !device.CanWrite(info.Properties(), ack) {
			return &device.NoAccessError{UUID: uuid, Capability: "write"}
		}
		return h.WriteValue(ctx, info.UUID(), data, ack)
	})
}

// Read reads and decodes c.
func Read[T any](ctx context.Context, s *Session, c *codec.Characteristic[T]) (T, error) {
	data, err := s.ReadRaw(ctx, c.UUID())
	if err != nil {
		var zero T
		return zero, err
	}
	return c.Decode(data)
}

// Lookup is Read with NotFound and NoAccess reported in the result. Decode
// and transport failures are still errors.
func Lookup[T any](ctx context.Context, s *Session, c *codec.Characteristic[T]) (Result[T], error) {
	v, err := Read(ctx, s, c)
	return toResult(v, err)
}

// Write encodes v and writes it to c.
func Write[T any](ctx context.Context, s *Session, c *codec.Characteristic[T], v T, ack bool) error {
	data, err := c.Encode(v)
	if err != nil {
		return err
	}
	return s.WriteRaw(ctx, c.UUID(), data, ack)
}

func toResult[T any](v T, err error) (Result[T], error) {
	switch {
	case err == nil:
		return Result[T]{Status: StatusValue, Value: v}, nil
	case errors.Is(err, device.ErrNotFound):
		return Result[T]{Status: StatusNotFound}, nil
	case errors.Is(err, device.ErrNoAccess):
		return Result[T]{Status: StatusNoAccess}, nil
	default:
		return Result[T]{}, err
	}
}

// ReadValue reads uuid and decodes it with the registry. Characteristics
// the registry does not know come back as raw bytes.
func (s *Session) ReadValue(ctx context.Context, uuid string) (any, error) {
	data, err := s.ReadRaw(ctx, uuid)
	if err != nil {
		return nil, err
	}
	d, ok := s.registry.Characteristic(uuid)
	if !ok {
		return data, nil
	}
	return d.DecodeValue(data)
}

// WriteValue encodes v with the registry descriptor of uuid and writes it.
func (s *Session) WriteValue(ctx context.Context, uuid string, v any, ack bool) error {
	d, ok := s.registry.Characteristic(uuid)
	if !ok {
		data, isBytes := v.([]byte)
		if !isBytes {
			return fmt.Errorf("%w: %s", codec.ErrUnknownCharacteristic, uuid)
		}
		return s.WriteRaw(ctx, uuid, data, ack)
	}

	data, err := d.EncodeValue(v)
	if err != nil {
		return err
	}
	return s.WriteRaw(ctx, d.UUID(), data, ack)
}

// SyncClock sets the device clock to now when it drifted by more than the
// tolerance and reports whether it wrote. Devices without a clock are
// skipped without error.
func (s *Session) SyncClock(ctx context.Context, now time.Time) (bool, error) {
	deviceTime, err := Read(ctx, s, s.clock)
	if errors.Is(err, device.ErrNoAccess) {
		s.logger.WithError(err).Debug("No timestamp defined for device")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// The device keeps naive wall-clock time; compare it in now's zone.
	deviceTime = wallClock(deviceTime, now.Location())
	delta := deviceTime.Sub(now)
	fields := logrus.Fields{"delta": delta, "tolerance": s.tolerance}

	if delta <= s.tolerance && delta >= -s.tolerance {
		s.logger.WithFields(fields).Debug("No need to update timestamp")
		return false, nil
	}

	s.logger.WithFields(fields).Warn("Updating time on device to match local time")
	if err := Write(ctx, s, s.clock, wallClock(now, time.Local), true); err != nil {
		return false, err
	}
	return true, nil
}

func wallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// CharacteristicUUIDs lists every characteristic the device exposes.
func (s *Session) CharacteristicUUIDs(ctx context.Context) ([]string, error) {
	infos, err := s.Characteristics(ctx)
	if err != nil {
		return nil, err
	}
	uuids := make([]string, 0, len(infos))
	for _, info := range infos {
		uuids = append(uuids, info.UUID())
	}
	s.logger.WithField("characteristics", uuids).Debug("Enumerated characteristics")
	return uuids, nil
}

// Characteristics returns the discovered characteristics with their
// properties.
func (s *Session) Characteristics(ctx context.Context) ([]device.CharacteristicInfo, error) {
	var infos []device.CharacteristicInfo
	err := s.conn.Do(ctx, "discover", func(_ context.Context, h device.Handle) error {
		infos = h.Characteristics()
		return nil
	})
	return infos, err
}

// Disconnect closes the underlying connection now.
func (s *Session) Disconnect(ctx context.Context) error {
	return s.conn.Disconnect(ctx)
}
