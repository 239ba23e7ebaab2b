package testutils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/srg/gardena/internal/device"
	goble "github.com/srg/gardena/internal/device/go-ble"
)

// Write is a value written through a FakeHandle.
type Write struct {
	Data []byte
	Ack  bool
}

type fakeCharacteristic struct {
	uuid        string
	serviceUUID string
	properties  device.Properties
	value       []byte
	writes      []Write
}

func (c *fakeCharacteristic) UUID() string                  { return c.uuid }
func (c *fakeCharacteristic) ServiceUUID() string           { return c.serviceUUID }
func (c *fakeCharacteristic) Properties() device.Properties { return c.properties }

// FakeStack is an in-memory device.Stack for exercising connection
// management without a radio. It counts connects and disconnects and can be
// told to fail.
type FakeStack struct {
	mu           sync.Mutex
	chars        map[string]*fakeCharacteristic
	order        []*fakeCharacteristic
	connectErr   error
	readErrs     map[string]error
	writeErrs    map[string]error
	connectDelay time.Duration
	handles      []*FakeHandle
	addresses    []string

	connects    atomic.Int64
	disconnects atomic.Int64
	reads       atomic.Int64
	active      atomic.Int64
	maxActive   atomic.Int64
}

var _ device.Stack = (*FakeStack)(nil)

func NewFakeStack() *FakeStack {
	return &FakeStack{
		chars:     make(map[string]*fakeCharacteristic),
		readErrs:  make(map[string]error),
		writeErrs: make(map[string]error),
	}
}

// WithCharacteristic exposes a characteristic with the given properties
// ("read,write", "write-without-response", ...) and initial value.
func (s *FakeStack) WithCharacteristic(serviceUUID, uuid, properties string, value []byte) *FakeStack {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &fakeCharacteristic{
		uuid:        device.NormalizeUUID(uuid),
		serviceUUID: device.NormalizeUUID(serviceUUID),
		properties:  goble.NewProperties(ParseProperties(properties)),
		value:       append([]byte(nil), value...),
	}
	if c.uuid == "" {
		panic(fmt.Sprintf("FakeStack.WithCharacteristic: invalid uuid %q", uuid))
	}
	if _, ok := s.chars[c.uuid]; !ok {
		s.order = append(s.order, c)
	}
	s.chars[c.uuid] = c
	return s
}

// SetValue replaces the value reads return.
func (s *FakeStack) SetValue(uuid string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chars[device.NormalizeUUID(uuid)].value = append([]byte(nil), value...)
}

// Value returns the current value, last write included.
func (s *FakeStack) Value(uuid string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chars[device.NormalizeUUID(uuid)]
	if !ok {
		return nil
	}
	return append([]byte(nil), c.value...)
}

// Writes returns every write made to uuid.
func (s *FakeStack) Writes(uuid string) []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chars[device.NormalizeUUID(uuid)]
	if !ok {
		return nil
	}
	return append([]Write(nil), c.writes...)
}

// FailConnect makes subsequent connects fail with err; nil restores them.
func (s *FakeStack) FailConnect(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectErr = err
}

// FailRead makes reads of uuid fail with err; nil restores them.
func (s *FakeStack) FailRead(uuid string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.readErrs, device.NormalizeUUID(uuid))
		return
	}
	s.readErrs[device.NormalizeUUID(uuid)] = err
}

// FailWrite makes writes to uuid fail with err; nil restores them.
func (s *FakeStack) FailWrite(uuid string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.writeErrs, device.NormalizeUUID(uuid))
		return
	}
	s.writeErrs[device.NormalizeUUID(uuid)] = err
}

// SetConnectDelay makes every connect take d.
func (s *FakeStack) SetConnectDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectDelay = d
}

func (s *FakeStack) Connects() int64    { return s.connects.Load() }
func (s *FakeStack) Disconnects() int64 { return s.disconnects.Load() }
func (s *FakeStack) Reads() int64       { return s.reads.Load() }

// MaxActive is the highest number of simultaneously open links seen.
func (s *FakeStack) MaxActive() int64 { return s.maxActive.Load() }

// Addresses lists the addresses passed to Connect, in order.
func (s *FakeStack) Addresses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.addresses...)
}

// LastHandle returns the most recently created handle.
func (s *FakeStack) LastHandle() *FakeHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.handles) == 0 {
		return nil
	}
	return s.handles[len(s.handles)-1]
}

func (s *FakeStack) Connect(ctx context.Context, address string) (device.Handle, error) {
	s.mu.Lock()
	delay, connectErr := s.connectDelay, s.connectErr
	s.addresses = append(s.addresses, address)
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.connects.Inc()
	if connectErr != nil {
		return nil, connectErr
	}

	h := &FakeHandle{stack: s, address: address}
	h.connected.Store(true)

	n := s.active.Inc()
	for {
		m := s.maxActive.Load()
		if n <= m || s.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	s.mu.Lock()
	s.handles = append(s.handles, h)
	s.mu.Unlock()
	return h, nil
}

func (s *FakeStack) Disconnect(_ context.Context, h device.Handle) error {
	fh, ok := h.(*FakeHandle)
	if !ok {
		return fmt.Errorf("%w: handle %T", device.ErrUnsupported, h)
	}
	s.disconnects.Inc()
	if fh.connected.CompareAndSwap(true, false) {
		s.active.Dec()
	}
	return nil
}

// FakeHandle is a link created by FakeStack.
type FakeHandle struct {
	stack     *FakeStack
	address   string
	connected atomic.Bool
}

var _ device.Handle = (*FakeHandle)(nil)

// Drop simulates the peripheral going away.
func (h *FakeHandle) Drop() {
	if h.connected.CompareAndSwap(true, false) {
		h.stack.active.Dec()
	}
}

func (h *FakeHandle) Address() string   { return h.address }
func (h *FakeHandle) IsConnected() bool { return h.connected.Load() }

func (h *FakeHandle) Characteristic(uuid string) (device.CharacteristicInfo, bool) {
	h.stack.mu.Lock()
	defer h.stack.mu.Unlock()
	c, ok := h.stack.chars[device.NormalizeUUID(uuid)]
	if !ok {
		return nil, false
	}
	return c, true
}

func (h *FakeHandle) Characteristics() []device.CharacteristicInfo {
	h.stack.mu.Lock()
	defer h.stack.mu.Unlock()
	out := make([]device.CharacteristicInfo, 0, len(h.stack.order))
	for _, c := range h.stack.order {
		out = append(out, c)
	}
	return out
}

func (h *FakeHandle) ReadValue(ctx context.Context, uuid string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !h.IsConnected() {
		return nil, device.ErrNotConnected
	}

	h.stack.reads.Inc()
	h.stack.mu.Lock()
	defer h.stack.mu.Unlock()

	key := device.NormalizeUUID(uuid)
	c, ok := h.stack.chars[key]
	if !ok {
		return nil, &device.NotFoundError{UUID: uuid}
	}
	if err := h.stack.readErrs[key]; err != nil {
		return nil, err
	}
	return append([]byte(nil), c.value...), nil
}

func (h *FakeHandle) WriteValue(ctx context.Context, uuid string, data []byte, ack bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !h.IsConnected() {
		return device.ErrNotConnected
	}

	h.stack.mu.Lock()
	defer h.stack.mu.Unlock()

	key := device.NormalizeUUID(uuid)
	c, ok := h.stack.chars[key]
	if !ok {
		return &device.NotFoundError{UUID: uuid}
	}
	if err := h.stack.writeErrs[key]; err != nil {
		return err
	}
	c.value = append([]byte(nil), data...)
	c.writes = append(c.writes, Write{Data: append([]byte(nil), data...), Ack: ack})
	return nil
}
