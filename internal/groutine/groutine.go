// Package groutine starts named goroutines. Names are attached as pprof
// labels so they show up in goroutine profiles and dumps.
package groutine

import (
	"bytes"
	"context"
	"runtime"
	"runtime/pprof"
	"strconv"
	"sync"

	"go.uber.org/atomic"
)

type ctxKey string

const goroutineNameKey ctxKey = "goroutine_name"

// Go starts fn in a goroutine labelled with name.
// If parentCtx is nil, context.Background() is used.
func Go(parentCtx context.Context, name string, fn func(ctx context.Context)) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}

	labels := pprof.Labels("goroutine_name", name)

	go pprof.Do(parentCtx, labels, func(ctx context.Context) {
		ctx = context.WithValue(ctx, goroutineNameKey, name)
		fn(ctx)
	})
}

// GetName retrieves the goroutine name from the context.
func GetName(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(goroutineNameKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetGID returns the numeric goroutine ID (hacky, for debugging).
func GetGID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return 0
	}
	gid, _ := strconv.ParseUint(string(b[:i]), 10, 64)
	return gid
}

// Tracker starts named goroutines and keeps count of the ones still running.
// The zero value is ready to use.
type Tracker struct {
	wg      sync.WaitGroup
	running atomic.Int64
	started atomic.Int64
}

// Go is like the package level Go but tracked.
func (t *Tracker) Go(parentCtx context.Context, name string, fn func(ctx context.Context)) {
	t.wg.Add(1)
	t.running.Inc()
	t.started.Inc()
	Go(parentCtx, name, func(ctx context.Context) {
		defer t.wg.Done()
		defer t.running.Dec()
		fn(ctx)
	})
}

// Running reports how many tracked goroutines have not returned yet.
func (t *Tracker) Running() int64 {
	return t.running.Load()
}

// Started reports how many goroutines were started over the tracker's life.
func (t *Tracker) Started() int64 {
	return t.started.Load()
}

// Wait blocks until every goroutine started so far has returned.
func (t *Tracker) Wait() {
	t.wg.Wait()
}
