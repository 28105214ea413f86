package cache

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient backend failure.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or anything it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryDelay is the wait before the second attempt; tests shorten it.
var retryDelay = 100 * time.Millisecond

// backoff describes a retry schedule: Attempts calls with a delay that
// doubles after every failed one.
type backoff struct {
	Attempts int
	Delay    time.Duration
}

// do calls fn until it succeeds, fails permanently or the attempts run
// out. The last error is returned.
func (b backoff) do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt >= b.Attempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}

// RetryWithBackoff calls fn up to three times. Only errors marked with
// [Retryable] are retried; the context bounds the waits in between.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return backoff{Attempts: 3, Delay: retryDelay}.do(ctx, fn)
}
