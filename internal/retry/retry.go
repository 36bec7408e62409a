// Package retry provides a small generic retry policy with exponential
// backoff. Collaborators that talk to flaky external services receive a
// Policy as configuration instead of hand-rolling backoff loops inline.
package retry

import (
	"context"
	"time"
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt.
	BaseDelay time.Duration
	// Multiplier scales the delay after each failed attempt.
	Multiplier float64
	// MaxDelay caps the backoff delay. Zero means uncapped.
	MaxDelay time.Duration
}

// DefaultPolicy returns a conservative policy suitable for rate-limited APIs.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  2.0,
		MaxDelay:    10 * time.Second,
	}
}

// Do runs op until it succeeds, attempts are exhausted, the error is not
// retryable, or ctx is cancelled. A nil retryable predicate retries every
// error. The last operation error is returned; cancellation during a
// backoff wait returns ctx.Err().
func (p Policy) Do(ctx context.Context, retryable func(error) bool, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.BaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt >= attempts {
			return err
		}
		if retryable != nil && !retryable(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}
