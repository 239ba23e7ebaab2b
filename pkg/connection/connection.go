// Package connection shares one physical link to one peripheral between
// concurrent callers. The link is reference counted and torn down after a
// grace period once the last caller releases it.
package connection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/srg/gardena/internal/device"
)

// DefaultDisconnectDelay is the grace period before an unused link is
// closed.
const DefaultDisconnectDelay = time.Second

// AddressFunc resolves the peripheral address for a connect attempt.
type AddressFunc func(ctx context.Context) (string, error)

// StaticAddress always resolves to addr.
func StaticAddress(addr string) AddressFunc {
	return func(context.Context) (string, error) {
		if strings.TrimSpace(addr) == "" {
			return "", fmt.Errorf("device address is empty")
		}
		return addr, nil
	}
}

type Option func(*CachedConnection)

// WithDisconnectDelay sets the grace period. Zero or negative closes the
// link as soon as the timer goroutine runs.
func WithDisconnectDelay(d time.Duration) Option {
	return func(c *CachedConnection) { c.delay = d }
}

func WithLogger(logger *logrus.Logger) Option {
	return func(c *CachedConnection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// CachedConnection owns the link to one peripheral. Connect and disconnect
// are serialised by a per-instance lock; reads and writes on an open link
// are not.
type CachedConnection struct {
	stack  device.Stack
	lookup AddressFunc
	delay  time.Duration
	logger *logrus.Logger

	// transition is a one-slot semaphore held while connecting or
	// disconnecting. Unlike sync.Mutex it can be abandoned on ctx.
	transition chan struct{}
	teardown   *DelayedCall

	mu      sync.Mutex
	handle  device.Handle
	refs    int
	pending Token
}

func New(stack device.Stack, lookup AddressFunc, opts ...Option) *CachedConnection {
	c := &CachedConnection{
		stack:      stack,
		lookup:     lookup,
		delay:      DefaultDisconnectDelay,
		logger:     logrus.New(),
		transition: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.teardown = NewDelayedCall("ble-delayed-disconnect", c.expire, c.logger)
	return c
}

func (c *CachedConnection) lock(ctx context.Context) error {
	select {
	case c.transition <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CachedConnection) unlock() {
	<-c.transition
}

// Acquire returns a lease on a connected handle, connecting if needed and
// cancelling a pending grace-period disconnect. Every lease must be
// released.
func (c *CachedConnection) Acquire(ctx context.Context) (*Lease, error) {
	c.mu.Lock()
	if c.teardown.Cancel(c.pending) {
		c.logger.WithField("token", c.pending).Debug("Pending disconnect cancelled")
		c.pending = 0
	}
	c.mu.Unlock()

	if err := c.lock(ctx); err != nil {
		return nil, err
	}
	defer c.unlock()

	c.mu.Lock()
	h := c.handle
	c.mu.Unlock()

	if h != nil && !h.IsConnected() {
		c.logger.WithField("address", h.Address()).Debug("Cached link is gone, reconnecting")
		c.mu.Lock()
		c.handle = nil
		c.mu.Unlock()
		_ = c.disconnect(ctx, h)
		h = nil
	}

	if h == nil {
		var err error
		if h, err = c.connect(ctx); err != nil {
			return nil, err
		}
	} else {
		c.logger.WithField("address", h.Address()).Debug("Reusing cached link")
	}

	c.mu.Lock()
	c.handle = h
	c.refs++
	c.pending = 0
	c.mu.Unlock()

	return &Lease{conn: c, handle: h}, nil
}

func (c *CachedConnection) connect(ctx context.Context) (device.Handle, error) {
	address, err := c.lookup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device address: %w", err)
	}

	c.logger.WithField("address", address).Debug("Connecting")
	h, err := c.stack.Connect(ctx, address)
	if err != nil {
		if isContextError(err) {
			return nil, err
		}
		return nil, &device.CommunicationError{Op: "connect", Err: err}
	}
	c.logger.WithField("address", address).Debug("Connected")
	return h, nil
}

// disconnect closes h, logging rather than returning failures.
func (c *CachedConnection) disconnect(ctx context.Context, h device.Handle) error {
	c.logger.WithField("address", h.Address()).Debug("Disconnecting")
	if err := c.stack.Disconnect(ctx, h); err != nil {
		c.logger.WithError(err).WithField("address", h.Address()).Warn("Disconnect failed")
		return err
	}
	return nil
}

func (c *CachedConnection) release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refs--
	if c.refs < 0 {
		c.refs = 0
	}
	if c.refs == 0 && c.handle != nil {
		c.pending = c.teardown.CallLater(c.delay)
	}
}

// expire runs when the grace period of tok elapses.
func (c *CachedConnection) expire(ctx context.Context, tok Token) {
	if err := c.lock(ctx); err != nil {
		return
	}
	defer c.unlock()

	c.mu.Lock()
	if c.refs > 0 || c.pending != tok || c.handle == nil {
		c.mu.Unlock()
		return
	}
	h := c.handle
	c.handle = nil
	c.pending = 0
	c.mu.Unlock()

	_ = c.disconnect(ctx, h)
}

// fail maps an error raised while h was in use. Transport failures close h
// at once and come back as CommunicationError; characteristic access and
// context errors are returned as is.
func (c *CachedConnection) fail(h device.Handle, op string, err error) error {
	var commErr *device.CommunicationError
	switch {
	case err == nil:
		return nil
	case device.IsAccessError(err), isContextError(err), errors.As(err, &commErr):
		return err
	}

	c.teardown.CancelPending()
	c.lock(context.Background()) //nolint:errcheck // background ctx never expires
	defer c.unlock()

	c.mu.Lock()
	current := c.handle == h
	if current {
		c.handle = nil
		c.pending = 0
	}
	c.mu.Unlock()

	if current {
		c.logger.WithError(err).WithField("address", h.Address()).Debug("Unexpected disconnection from device")
		_ = c.disconnect(context.Background(), h)
	}
	return &device.CommunicationError{Op: op, Err: err}
}

// Do runs fn on a leased handle and releases it afterwards. Errors from fn
// pass through the same mapping as Lease.Fail.
func (c *CachedConnection) Do(ctx context.Context, op string, fn func(ctx context.Context, h device.Handle) error) error {
	lease, err := c.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()

	return lease.Fail(op, fn(ctx, lease.Handle()))
}

// Disconnect closes the link now, whatever the reference count, and
// cancels a pending grace-period disconnect.
func (c *CachedConnection) Disconnect(ctx context.Context) error {
	c.teardown.CancelPending()

	if err := c.lock(ctx); err != nil {
		return err
	}
	defer c.unlock()

	c.mu.Lock()
	h := c.handle
	c.handle = nil
	c.pending = 0
	c.mu.Unlock()

	if h == nil {
		return nil
	}
	return c.disconnect(ctx, h)
}

// Close disconnects and waits for a grace-period disconnect already under
// way.
func (c *CachedConnection) Close(ctx context.Context) error {
	err := c.Disconnect(ctx)
	c.teardown.Wait()
	return err
}

// RefCount is the number of outstanding leases.
func (c *CachedConnection) RefCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refs
}

// Connected reports whether a live link is cached.
func (c *CachedConnection) Connected() bool {
	c.mu.Lock()
	h := c.handle
	c.mu.Unlock()
	return h != nil && h.IsConnected()
}

// DisconnectPending reports whether the grace-period timer is armed.
func (c *CachedConnection) DisconnectPending() bool {
	return c.teardown.Pending()
}

// Lease is one caller's share of the link.
type Lease struct {
	conn     *CachedConnection
	handle   device.Handle
	released atomic.Bool
}

func (l *Lease) Handle() device.Handle {
	return l.handle
}

// Fail maps err raised while using the lease; see CachedConnection.Do.
func (l *Lease) Fail(op string, err error) error {
	return l.conn.fail(l.handle, op, err)
}

// Release gives the lease back. Only the first call counts.
func (l *Lease) Release() {
	if l.released.CompareAndSwap(false, true) {
		l.conn.release()
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
