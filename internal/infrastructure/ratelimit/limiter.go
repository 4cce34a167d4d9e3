// Package ratelimit bounds outbound catalog calls with a sliding window:
// at most maxCalls within the trailing window, counted from recorded
// request timestamps and pruned lazily.
package ratelimit

import (
	"sync"
	"time"
)

type SlidingWindow struct {
	maxCalls int
	window   time.Duration

	mu    sync.Mutex
	calls []time.Time

	now func() time.Time
}

func NewSlidingWindow(maxCalls int, window time.Duration) *SlidingWindow {
	if maxCalls <= 0 {
		maxCalls = 100
	}
	if window <= 0 {
		window = time.Hour
	}
	return &SlidingWindow{
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
	}
}

// Allow reports whether a request fits in the current window. Stale
// timestamps are pruned here. Allow and Record are deliberately separate
// calls, so concurrent callers can exceed the ceiling by a small margin;
// the external service enforces the hard backstop.
func (l *SlidingWindow) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.calls) < l.maxCalls
}

// Record appends the current timestamp. Call it only after acting on an
// Allow check.
func (l *SlidingWindow) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, l.now())
}

// TimeUntilNext returns zero when a request is currently allowed, otherwise
// the time until the oldest recorded timestamp exits the window.
func (l *SlidingWindow) TimeUntilNext() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)
	if len(l.calls) < l.maxCalls {
		return 0
	}

	oldest := l.calls[0]
	wait := oldest.Add(l.window).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// Remaining returns how many requests the window still admits.
func (l *SlidingWindow) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return l.maxCalls - len(l.calls)
}

// prune drops timestamps older than the window. Caller holds l.mu.
// Timestamps are appended in order, so the suffix after the first in-window
// entry is kept wholesale.
func (l *SlidingWindow) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	idx := 0
	for idx < len(l.calls) && !l.calls[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		l.calls = append(l.calls[:0], l.calls[idx:]...)
	}
}
