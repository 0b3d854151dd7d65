// Package retry runs an operation a bounded number of times with jittered
// exponential backoff between attempts.
package retry

import (
	"context"
	"fmt"
	"time"

	awsretry "github.com/aws/aws-sdk-go-v2/aws/retry"
)

// Policy bounds how often and how long an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int
	// MaxBackoff caps the delay between two attempts.
	MaxBackoff time.Duration
	// Backoff computes the delay before attempt n+1. Defaults to exponential jitter.
	Backoff awsretry.BackoffDelayer
	// Sleep waits between attempts. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy retries five times, waiting at most half a second between attempts.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 5, MaxBackoff: 500 * time.Millisecond}
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do calls fn until it succeeds, returns an error retryable rejects, or the
// attempt budget runs out. It returns the number of attempts made.
func Do(ctx context.Context, p Policy, retryable func(error) bool, fn func(ctx context.Context, attempt int) error) (int, error) {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Backoff == nil {
		p.Backoff = awsretry.NewExponentialJitterBackoff(p.MaxBackoff)
	}
	if p.Sleep == nil {
		p.Sleep = sleep
	}

	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = fn(ctx, attempt); err == nil {
			return attempt, nil
		}
		if !retryable(err) {
			return attempt, err
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay, berr := p.Backoff.BackoffDelay(attempt, err)
		if berr != nil {
			return attempt, fmt.Errorf("failed to compute backoff: %w", berr)
		}
		if p.MaxBackoff > 0 && delay > p.MaxBackoff {
			delay = p.MaxBackoff
		}
		if serr := p.Sleep(ctx, delay); serr != nil {
			return attempt, serr
		}
	}

	return p.MaxAttempts, &ExhaustedError{Attempts: p.MaxAttempts, Err: err}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
