package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

const (
	progressUpdateInterval = 100 * time.Millisecond
	clearLineSequence      = "\r\033[K"
)

// ProgressPrinter keeps a one-line status with a seconds counter on the
// terminal while a command waits on the radio. It prints nothing when its
// output is not a terminal.
//
//	p := NewProgressPrinter(os.Stderr, "Reading", "Connecting", "Processing results")
//	p.Start()
//	defer p.Stop()
//
// Stop must be called; a printer cannot be restarted.
type ProgressPrinter struct {
	out        io.Writer
	enabled    bool
	prefix     string
	phase      atomic.Value
	stopPhases map[string]struct{}
	countdown  time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewProgressPrinter counts elapsed seconds. Setting one of stopPhases
// through Callback stops the printer.
func NewProgressPrinter(out io.Writer, prefix, phase string, stopPhases ...string) *ProgressPrinter {
	p := &ProgressPrinter{
		out:        out,
		enabled:    isTerminal(out),
		prefix:     prefix,
		stopPhases: make(map[string]struct{}, len(stopPhases)),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, s := range stopPhases {
		p.stopPhases[s] = struct{}{}
	}
	p.phase.Store(phase)
	return p
}

// NewCountdownProgressPrinter counts down from d instead.
func NewCountdownProgressPrinter(out io.Writer, prefix, phase string, d time.Duration, stopPhases ...string) *ProgressPrinter {
	p := NewProgressPrinter(out, prefix, phase, stopPhases...)
	p.countdown = d
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *ProgressPrinter) Start() {
	p.startOnce.Do(func() {
		if !p.enabled {
			close(p.done)
			return
		}
		go p.loop(time.Now())
	})
}

func (p *ProgressPrinter) loop(start time.Time) {
	defer close(p.done)

	ticker := time.NewTicker(progressUpdateInterval)
	defer ticker.Stop()

	p.print(0)
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			elapsed := time.Since(start)
			seconds := int(elapsed.Seconds())
			if p.countdown > 0 {
				seconds = 0
				if remaining := p.countdown - elapsed; remaining > 0 {
					seconds = int(remaining.Seconds() + 0.5)
				}
			}
			p.print(seconds)
		}
	}
}

func (p *ProgressPrinter) print(seconds int) {
	phase := p.phase.Load().(string)
	if seconds > 0 {
		_, _ = fmt.Fprintf(p.out, "\r%s (%s %ds)   ", p.prefix, phase, seconds)
	} else {
		_, _ = fmt.Fprintf(p.out, "\r%s (%s...)   ", p.prefix, phase)
	}
}

// Callback returns a phase setter suitable for the scanner and inspector.
// It is safe for concurrent use.
func (p *ProgressPrinter) Callback() func(phase string) {
	return func(phase string) {
		p.phase.Store(phase)
		if _, ok := p.stopPhases[phase]; ok {
			p.Stop()
		}
	}
}

// Stop clears the status line. Extra calls do nothing.
func (p *ProgressPrinter) Stop() {
	p.stopOnce.Do(func() {
		p.Start()
		close(p.stop)
		<-p.done
		if p.enabled {
			_, _ = fmt.Fprint(p.out, clearLineSequence)
		}
	})
}
