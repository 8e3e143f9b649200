// Package fence discards stale async results with a monotonic attempt counter.
//
// Remote calls here are never cancelled at the transport level; "cancellation"
// is purely result suppression. Every consumer of an async result must capture
// an attempt id before starting and check IsCurrent before applying the result
// to shared state. Bumping the counter on any identity change (sign-out,
// sign-in) invalidates all in-flight attempts unconditionally.
package fence

import "sync/atomic"

type Fence struct {
	counter atomic.Uint64
}

func New() *Fence {
	return &Fence{}
}

// NewAttempt increments the counter and returns the new attempt id.
func (f *Fence) NewAttempt() uint64 {
	return f.counter.Add(1)
}

// IsCurrent reports whether id is still the live attempt.
func (f *Fence) IsCurrent(id uint64) bool {
	return f.counter.Load() == id
}

// Current returns the live attempt id without starting a new one.
func (f *Fence) Current() uint64 {
	return f.counter.Load()
}
