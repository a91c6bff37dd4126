// Package retry runs an operation with capped exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted wraps the last error once MaxAttempts is reached.
var ErrExhausted = errors.New("max attempts exceeded")

// Config holds retry configuration.
type Config struct {
	MaxAttempts  int           // Maximum number of attempts (including initial attempt)
	InitialDelay time.Duration // Delay before the second attempt
	MaxDelay     time.Duration // Upper bound for a single delay
	Multiplier   float64       // Growth factor between delays

	// OnRetry, when set, is called before sleeping after a failed attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig mirrors the receipt polling schedule: 2s, 4s, 8s, 16s.
var DefaultConfig = Config{
	MaxAttempts:  5,
	InitialDelay: 2 * time.Second,
	MaxDelay:     32 * time.Second,
	Multiplier:   2.0,
}

// IsRetryable decides whether err should trigger another attempt.
type IsRetryable func(error) bool

// Always retries every error.
func Always(error) bool { return true }

// Do calls fn until it succeeds, returns a non-retryable error, the attempt cap is hit
// or ctx is done. attempt is 1-based. Context errors are returned unwrapped so callers
// can tell cancellation from exhaustion.
func Do[T any](ctx context.Context, cfg Config, isRetryable IsRetryable, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	multiplier := cfg.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx, attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		if !isRetryable(err) {
			return zero, err
		}
		if attempt == attempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}

		delay = time.Duration(float64(delay) * multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}
