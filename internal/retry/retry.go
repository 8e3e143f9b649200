// Package retry provides bounded-retry-with-timeout semantics for a single
// remote call, with the policy held as data so callers can tune (and tests can
// shrink) attempts, timeouts and delays.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes one retry schedule. TimeoutFor receives the 1-based attempt
// index, so timeouts may grow between attempts.
type Policy struct {
	MaxAttempts int
	TimeoutFor  func(attempt int) time.Duration
	Delay       time.Duration

	// NonBlocking declares the operation an enhancement rather than a gate:
	// exhausting all attempts yields the zero value and a nil error instead of
	// surfacing the failure. Verification uses this; it must never block
	// onboarding.
	NonBlocking bool
}

// VerificationPolicy is the registry-lookup schedule: two attempts, 20s then
// 40s timeout, 1s between attempts, degrading to the zero value on exhaustion.
func VerificationPolicy() Policy {
	return Policy{
		MaxAttempts: 2,
		TimeoutFor: func(attempt int) time.Duration {
			if attempt == 1 {
				return 20 * time.Second
			}
			return 40 * time.Second
		},
		Delay:       time.Second,
		NonBlocking: true,
	}
}

type outcome[T any] struct {
	val T
	err error
}

// Invoke races fn against the per-attempt timeout; whichever settles first
// wins. The loser is not cancelled — a late settlement lands in a buffered
// channel that nobody reads, so it can never mutate shared state.
func Invoke[T any](ctx context.Context, clock Clock, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		ch := make(chan outcome[T], 1)
		go func() {
			v, err := fn(ctx)
			ch <- outcome[T]{val: v, err: err}
		}()

		timeout := p.TimeoutFor(attempt)
		select {
		case out := <-ch:
			if out.err == nil {
				return out.val, nil
			}
			lastErr = out.err
		case <-clock.After(timeout):
			lastErr = fmt.Errorf("attempt %d timed out after %s", attempt, timeout)
		case <-ctx.Done():
			if p.NonBlocking {
				return zero, nil
			}
			return zero, ctx.Err()
		}

		if attempt < p.MaxAttempts && p.Delay > 0 {
			select {
			case <-clock.After(p.Delay):
			case <-ctx.Done():
				if p.NonBlocking {
					return zero, nil
				}
				return zero, ctx.Err()
			}
		}
	}

	if p.NonBlocking {
		return zero, nil
	}
	return zero, lastErr
}
