// Package cli holds process-level helpers for the samplecli executable.
package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalContext is cancelled by the first interrupt or termination signal
// and remembers the shell exit code that signal maps to.
type SignalContext struct {
	context.Context
	cancel context.CancelFunc
	notify chan os.Signal

	mu       sync.Mutex
	received os.Signal
	code     int
}

// NewSignalContext watches signals (SIGINT and SIGTERM when none are given)
// until the first one arrives or parent is done.
func NewSignalContext(parent context.Context, signals ...os.Signal) *SignalContext {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		cancel:  cancel,
		notify:  make(chan os.Signal, 1),
	}
	signal.Notify(sc.notify, signals...)
	go sc.watch()
	return sc
}

func (sc *SignalContext) watch() {
	defer signal.Stop(sc.notify)
	select {
	case sig := <-sc.notify:
		sc.mu.Lock()
		sc.received = sig
		// 128+n is what a shell reports for a process killed by signal n.
		if n, ok := sig.(syscall.Signal); ok {
			sc.code = 128 + int(n)
		}
		sc.mu.Unlock()
		sc.cancel()
	case <-sc.Done():
	}
}

// Stop cancels the context and stops watching for signals.
func (sc *SignalContext) Stop() {
	sc.cancel()
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.received
}

// ExitCode returns the code recorded for the received signal, or code when
// the run ended without one.
func (sc *SignalContext) ExitCode(code int) int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.code != 0 {
		return sc.code
	}
	return code
}
