// This code was adapted from https://github.com/dapr/kit/tree/v0.15.4/
// Copyright (C) 2023 The Dapr Authors
// License: Apache2

// Package suppress implements a window that lets through the first occurrence of a key and drops repeats until the window for that key expires.
// It is used to avoid flooding logs when the same fault is raised in a tight loop.
// Expired entries are periodically purged in background.
package suppress

import (
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/alphadose/haxmap"
	kclock "k8s.io/utils/clock"
	"lukechampine.com/blake3"
)

// Window suppresses repeated keys within a period.
type Window struct {
	m         *haxmap.Map[string, time.Time]
	clock     kclock.WithTicker
	period    time.Duration
	stopped   atomic.Bool
	runningCh chan struct{}
	stopCh    chan struct{}
}

// Options are options for New.
type Options struct {
	// Period during which repeats of a key are suppressed.
	// Must be 1ms or greater.
	Period time.Duration

	// Initial size for the underlying map.
	// This is optional, and if empty will be left to the underlying library to decide.
	InitialSize int32

	// Interval to purge expired keys.
	// This is optional, and defaults to 150s (2.5 minutes).
	CleanupInterval time.Duration

	// Internal clock property, used for testing
	clock kclock.WithTicker
}

// New returns a new Window.
// Callers must invoke Stop when the window is not needed anymore.
func New(opts Options) *Window {
	if opts.Period < time.Millisecond {
		panic("invalid period: must be 1ms or greater")
	}

	var m *haxmap.Map[string, time.Time]
	if opts.InitialSize > 0 {
		m = haxmap.New[string, time.Time](uintptr(opts.InitialSize))
	} else {
		m = haxmap.New[string, time.Time]()
	}

	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 2*time.Minute + 30*time.Second
	}

	if opts.clock == nil {
		opts.clock = kclock.RealClock{}
	}

	w := &Window{
		m:      m,
		clock:  opts.clock,
		period: opts.Period,
		stopCh: make(chan struct{}),
	}
	w.startBackgroundCleanup(opts.CleanupInterval)

	return w
}

// Allow returns true if key has not been seen in the current window.
// When it returns true, a new window starts for key.
func (w *Window) Allow(key string) bool {
	now := w.clock.Now()
	exp := now.Add(w.period)

	cur, loaded := w.m.GetOrSet(key, exp)
	if !loaded {
		return true
	}
	if cur.After(now) {
		return false
	}

	// The previous window has expired
	// Two concurrent callers may both get here, which would let one extra repeat through; that's acceptable for flood control
	w.m.Set(key, exp)
	return true
}

// Len returns the number of keys currently tracked, including expired ones that haven't been purged yet.
func (w *Window) Len() int {
	return int(w.m.Len())
}

// Cleanup removes all expired keys.
func (w *Window) Cleanup() {
	now := w.clock.Now()

	// Look for all expired keys and then remove them in bulk
	// A key renewed after ForEach returns may be removed nevertheless, which only means one more repeat is let through
	keys := make([]string, 0)
	w.m.ForEach(func(k string, exp time.Time) bool {
		if !exp.After(now) {
			keys = append(keys, k)
		}
		return true
	})

	w.m.Del(keys...)
}

func (w *Window) startBackgroundCleanup(d time.Duration) {
	w.runningCh = make(chan struct{})
	go func() {
		defer close(w.runningCh)

		t := w.clock.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-w.stopCh:
				return
			case <-t.C():
				w.Cleanup()
			}
		}
	}()
}

// Stop the background cleanup.
func (w *Window) Stop() {
	if w.stopped.CompareAndSwap(false, true) {
		close(w.stopCh)
	}
	<-w.runningCh
}

// Key returns a fingerprint of the given parts, to be used as key for Allow.
func Key(parts ...string) string {
	h := blake3.New(16, nil)
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		// Separator, so ("ab", "c") and ("a", "bc") don't collide
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

