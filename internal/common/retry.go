package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/EdvardGK/reduzer-summary/internal/service"
)

var (
	// ErrRateLimit marks a failure that should wait the longest delay
	// before the next attempt.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries is wrapped when every attempt failed.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// permanentError stops WithRetry on the first failure.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Permanent(nil) is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

func withDefaults(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier < 1 {
		opts.Multiplier = 2
	}
	return opts
}

// nextDelay grows delay by the multiplier, capped at the maximum.
func nextDelay(delay time.Duration, opts service.RetryOptions) time.Duration {
	next := time.Duration(float64(delay) * opts.Multiplier)
	if next > opts.MaxDelay {
		return opts.MaxDelay
	}
	return next
}

// WithRetry runs fn until it succeeds, returns a Permanent error, or the
// attempts in opts are used up. name identifies the operation in logs.
func WithRetry(ctx context.Context, name string, fn func(context.Context) error, opts service.RetryOptions) error {
	opts = withDefaults(opts)
	delay := opts.InitialDelay

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		switch {
		case err == nil:
			return nil
		case IsPermanent(err):
			return err
		case attempt == opts.MaxAttempts:
			return fmt.Errorf("%s: %w after %d attempts: %w", name, ErrMaxRetries, attempt, err)
		}

		wait := delay
		if errors.Is(err, ErrRateLimit) {
			wait = opts.MaxDelay
		}
		slog.Warn("retrying",
			"operation", name,
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = nextDelay(delay, opts)
	}
}
