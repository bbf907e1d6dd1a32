// Package retry provides a bounded-retry-with-backoff wrapper for remote
// operations. It is the single point of retry decision-making: callers trust
// its classification and never re-retry on top of it.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/barterly/barterly-server/internal/clock"
	"github.com/barterly/barterly-server/internal/errors"
)

// Default configuration values.
const (
	DefaultMaxRetries    = 3
	DefaultInitialDelay  = 1 * time.Second
	DefaultMaxDelay      = 10 * time.Second
	DefaultBackoffFactor = 2.0
)

// Options configures a retried operation.
type Options struct {
	// MaxRetries is the number of retries after the first attempt,
	// so an operation runs at most MaxRetries+1 times.
	MaxRetries int
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
	// BackoffFactor multiplies the delay after each retry.
	BackoffFactor float64
	// OnRetry, if set, is invoked with the attempt number (1-based) and the
	// error that caused the retry, before the backoff wait.
	OnRetry func(attempt int, err error)
}

// withDefaults fills unset fields with package defaults.
func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.BackoffFactor <= 1 {
		o.BackoffFactor = DefaultBackoffFactor
	}
	return o
}

// ExhaustedError reports that an operation kept failing with retryable errors
// until the retry budget ran out. It wraps the last underlying error so
// callers can distinguish "gave up after retrying" from "failed once,
// permanently".
type ExhaustedError struct {
	Attempts int // retries performed, not counting the first attempt
	cause    error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation failed after %d retries: %v", e.Attempts, e.cause)
}

// Unwrap returns the last underlying error.
func (e *ExhaustedError) Unwrap() error { return e.cause }

// Do runs op with bounded retry and exponential backoff.
//
// Non-retryable errors (validation, permission, not-found - see
// errors.Retryable) propagate immediately and unmodified after a single
// attempt. Retryable errors are retried up to opts.MaxRetries times with the
// delay growing by opts.BackoffFactor and capped at opts.MaxDelay; exhaustion
// yields an *ExhaustedError wrapping the last failure.
//
// Delays are scheduled on clk, which makes Do fully deterministic under a
// fake clock.
func Do[T any](ctx context.Context, clk clock.Clock, op func(context.Context) (T, error), opts Options) (T, error) {
	var zero T
	opts = opts.withDefaults()

	delay := opts.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !errors.Retryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt == opts.MaxRetries {
			break
		}

		if opts.OnRetry != nil {
			opts.OnRetry(attempt+1, err)
		}

		select {
		case <-clk.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}

		delay = time.Duration(float64(delay) * opts.BackoffFactor)
		if delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}

	return zero, &ExhaustedError{Attempts: opts.MaxRetries, cause: lastErr}
}
