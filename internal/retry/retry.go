// Package retry holds the one retry policy shared by startup-time network
// operations (database connect, Kafka topic creation). Request-path errors are
// never retried silently; they surface to the caller.
package retry

import (
	"context"
	"time"
)

// Policy describes how many times an operation is attempted and how long to
// wait between attempts.
type Policy struct {
	MaxAttempts int
	// Backoff returns the sleep before the given 1-based retry attempt.
	Backoff func(attempt int) time.Duration
}

// ConstantBackoff returns a policy that waits the same delay between attempts.
func ConstantBackoff(attempts int, delay time.Duration) Policy {
	return Policy{
		MaxAttempts: attempts,
		Backoff:     func(int) time.Duration { return delay },
	}
}

// Do runs fn until it succeeds, the policy is exhausted, or ctx is done.
// The last error is returned.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		delay := time.Duration(0)
		if p.Backoff != nil {
			delay = p.Backoff(attempt)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
