package connection

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/gardena/internal/groutine"
)

// Token identifies one arming of a DelayedCall. The zero Token is never
// issued.
type Token uint64

// DelayedCall runs fn once after a delay unless cancelled first. Arming it
// again replaces the previous arming. fn receives the token it was armed
// with so it can tell a stale firing from a current one.
type DelayedCall struct {
	name    string
	fn      func(ctx context.Context, tok Token)
	logger  *logrus.Logger
	tracker groutine.Tracker

	mu    sync.Mutex
	next  Token
	armed Token
	timer *time.Timer
}

func NewDelayedCall(name string, fn func(ctx context.Context, tok Token), logger *logrus.Logger) *DelayedCall {
	if logger == nil {
		logger = logrus.New()
	}
	return &DelayedCall{name: name, fn: fn, logger: logger}
}

// CallLater arms the call to run after d, cancelling any armed call.
func (dc *DelayedCall) CallLater(d time.Duration) Token {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.stopLocked()
	dc.next++
	tok := dc.next
	dc.armed = tok
	dc.timer = time.AfterFunc(d, func() { dc.fire(tok) })

	dc.logger.WithFields(logrus.Fields{
		"call":  dc.name,
		"token": tok,
		"delay": d,
	}).Debug("Delayed call armed")
	return tok
}

func (dc *DelayedCall) fire(tok Token) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.armed != tok {
		return
	}
	dc.armed = 0
	dc.timer = nil

	dc.logger.WithFields(logrus.Fields{"call": dc.name, "token": tok}).Debug("Delayed call fired")
	dc.tracker.Go(context.Background(), dc.name, func(ctx context.Context) {
		dc.fn(ctx, tok)
	})
}

// Cancel disarms the call if tok is still the armed token.
func (dc *DelayedCall) Cancel(tok Token) bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if tok == 0 || dc.armed != tok {
		return false
	}
	dc.stopLocked()
	return true
}

// CancelPending disarms whatever call is armed.
func (dc *DelayedCall) CancelPending() bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.armed == 0 {
		return false
	}
	dc.stopLocked()
	return true
}

func (dc *DelayedCall) stopLocked() {
	if dc.armed == 0 {
		return
	}
	if dc.timer != nil {
		dc.timer.Stop()
	}
	dc.logger.WithFields(logrus.Fields{"call": dc.name, "token": dc.armed}).Debug("Delayed call cancelled")
	dc.armed = 0
	dc.timer = nil
}

// Pending reports whether a call is armed and has not fired.
func (dc *DelayedCall) Pending() bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.armed != 0
}

// Running is the number of fired calls still executing.
func (dc *DelayedCall) Running() int64 {
	return dc.tracker.Running()
}

// Wait blocks until every fired call has returned. Armed calls are not
// waited for.
func (dc *DelayedCall) Wait() {
	dc.tracker.Wait()
}
