package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// DefaultBackoff is used when no options are given: five retries starting
// at one second, doubling up to thirty seconds.
var DefaultBackoff = wait.Backoff{
	Steps:    6,
	Duration: time.Second,
	Factor:   2.0,
	Jitter:   0.1,
	Cap:      30 * time.Second,
}

// Option adjusts the backoff of a single [Do] call.
type Option func(*wait.Backoff)

// WithRetries sets how many times a failed call is repeated.
// The call runs at most n+1 times.
func WithRetries(n int) Option {
	return func(b *wait.Backoff) {
		if n < 0 {
			n = 0
		}
		b.Steps = n + 1
	}
}

// WithDelay sets the delay before the first retry.
func WithDelay(d time.Duration) Option {
	return func(b *wait.Backoff) {
		b.Duration = d
	}
}

// WithMaxDelay caps the delay between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(b *wait.Backoff) {
		b.Cap = d
	}
}

// Do calls fn until it succeeds, returns a permanent error, runs out of
// attempts or ctx is done. Permanent errors are returned as they are.
func Do(ctx context.Context, fn func() error, opts ...Option) error {
	backoff := DefaultBackoff
	for _, opt := range opts {
		opt(&backoff)
	}

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}
		if backoff.Steps <= 1 {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		timer := time.NewTimer(backoff.Step())
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("interrupted after %d attempts: %w", attempt, errors.Join(ctx.Err(), err))
		case <-timer.C:
		}
	}
}

// PermanentError marks an error that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent marks err as not retryable. A nil error stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err or anything it wraps is a [PermanentError].
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
