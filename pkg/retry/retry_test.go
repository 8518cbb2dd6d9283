package retry

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testConfig = Config{MaxRetries: 3, InitialInterval: time.Millisecond, Multiplier: 1.0}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Retry(testConfig, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestRetryExhaustsBudget(t *testing.T) {
	attempts := 0
	underlying := errors.New("still broken")
	err := Retry(testConfig, func() error {
		attempts++
		return underlying
	})
	require.ErrorIs(t, err, underlying)
	require.Equal(t, 3, attempts)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	attempts := 0
	underlying := errors.New("404")
	err := Retry(testConfig, func() error {
		attempts++
		return fmt.Errorf("fetching: %w", Permanent(underlying))
	})
	require.ErrorIs(t, err, underlying)
	require.Equal(t, 1, attempts)
}

func TestWrappedErrorsStayRetryable(t *testing.T) {
	attempts := 0
	err := Retry(testConfig, func() error {
		attempts++
		return fmt.Errorf("attempt %d: %w", attempts, errors.New("transient"))
	})
	require.Error(t, err)
	require.Equal(t, 3, attempts)
}
