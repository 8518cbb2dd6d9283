// pkg/retry/retry.go - functions for retrying actions with exponential backoff.

package retry

import (
	"errors"
	"fmt"
	"time"

	"github.com/windowsadmins/hostprep/pkg/logging"
)

// PermanentError wraps errors that should fail immediately instead of
// being attempted again (e.g. an HTTP 404 for a fixed artifact URL).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

// Config defines the retry attempt schedule.
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
	Multiplier      float64
}

// Retry runs action until it succeeds or the attempt budget is exhausted,
// sleeping between attempts with exponential backoff.
func Retry(cfg Config, action func() error) error {
	interval := cfg.InitialInterval

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		lastErr = action()
		if lastErr == nil {
			return nil
		}

		var permanent *PermanentError
		if errors.As(lastErr, &permanent) {
			logging.Warn("Non-retryable error encountered",
				"attempt", attempt,
				"error", lastErr,
			)
			return lastErr
		}

		if attempt < cfg.MaxRetries {
			logging.Warn("Attempt failed, retrying",
				"attempt", attempt,
				"max_attempts", cfg.MaxRetries,
				"retry_delay", interval.String(),
				"error", lastErr,
			)
			time.Sleep(interval)
			interval = time.Duration(float64(interval) * cfg.Multiplier)
		}
	}

	logging.Warn("No more retries",
		"max_attempts", cfg.MaxRetries,
		"error", lastErr,
	)
	return fmt.Errorf("action failed after %d attempts: %w", cfg.MaxRetries, lastErr)
}
