package cache

import (
	"context"
	"errors"
	"time"
)

// transientError marks a backend failure worth retrying.
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Transient marks err as worth retrying. It returns nil for nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err}
}

// IsTransient reports whether err, or anything it wraps, was marked Transient.
func IsTransient(err error) bool {
	return errors.As(err, new(transientError))
}

// Backoff retries an operation with a doubling delay capped at Max.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	Max      time.Duration
}

// connectBackoff is used when dialing a backend.
var connectBackoff = Backoff{Attempts: 4, Delay: 250 * time.Millisecond, Max: 2 * time.Second}

// Retry runs fn until it succeeds, fails with a non-transient error or runs
// out of attempts. The last error is returned unwrapped from its Transient
// marker.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	delay := b.Delay
	for attempt := 1; ; attempt++ {
		err := fn()
		var te transientError
		if err == nil || !errors.As(err, &te) {
			return err
		}
		if attempt >= max(b.Attempts, 1) {
			return te.err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		if delay *= 2; b.Max > 0 && delay > b.Max {
			delay = b.Max
		}
	}
}
