// Package retry re-runs transient provider fetches a bounded number of
// times.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Config bounds the retry loop. With Backoff set the delay grows linearly
// with the attempt number.
type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool
}

// WithRetry runs fn until it succeeds, the attempts are spent, or the
// context is done. The final error wraps fn's last failure.
func WithRetry(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.Delay
		if cfg.Backoff {
			delay = time.Duration(attempt) * cfg.Delay
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
