// Package ratelimit provides sliding-window request admission control keyed
// by caller identity. It bounds in-process call volume to the external
// memory service; state is not persisted across restarts.
package ratelimit

import (
	"sync"
	"time"
)

// Defaults for the sliding window.
const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxRequests = 100
)

// Options configures a SlidingWindow.
type Options struct {
	// Window is the sliding window length.
	Window time.Duration
	// MaxRequests is the number of admissions allowed per key per window.
	MaxRequests int
}

// SlidingWindow admits at most MaxRequests calls per key within Window.
// Old entries are pruned lazily on the next check for the same key; there is
// no background sweep. The check-then-record sequence is atomic per call so
// concurrent checks for one key cannot over-admit.
type SlidingWindow struct {
	mu   sync.Mutex
	opts Options
	hits map[string][]time.Time
	now  func() time.Time
}

// New constructs a SlidingWindow with optional overrides.
func New(optFns ...func(o *Options)) *SlidingWindow {
	opts := Options{Window: DefaultWindow, MaxRequests: DefaultMaxRequests}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SlidingWindow{opts: opts, hits: make(map[string][]time.Time), now: time.Now}
}

// Allow reports whether a request for key is admitted, recording the
// admission timestamp when it is. Rejection has no side effects.
func (sw *SlidingWindow) Allow(key string) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	cutoff := now.Add(-sw.opts.Window)

	kept := sw.hits[key][:0]
	for _, t := range sw.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= sw.opts.MaxRequests {
		sw.hits[key] = kept
		return false
	}

	sw.hits[key] = append(kept, now)
	return true
}

// Remaining returns the number of admissions left for key in the current
// window without recording anything.
func (sw *SlidingWindow) Remaining(key string) int {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	cutoff := sw.now().Add(-sw.opts.Window)
	n := 0
	for _, t := range sw.hits[key] {
		if t.After(cutoff) {
			n++
		}
	}
	if n > sw.opts.MaxRequests {
		return 0
	}
	return sw.opts.MaxRequests - n
}

// Reset discards all recorded admissions for key.
func (sw *SlidingWindow) Reset(key string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	delete(sw.hits, key)
}
