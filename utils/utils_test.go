package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoffSucceedsEventually(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(3, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	}, NewLogger())

	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestRetryWithBackoffExhausts(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(2, func() error {
		calls++
		return errors.New("permanent")
	}, NewLogger())

	require.Error(t, err)
	require.Equal(t, 2, calls)
}

func TestURLTrackerDeduplicates(t *testing.T) {
	tracker := NewURLTracker()

	require.True(t, tracker.Add("https://example.com/a"))
	require.True(t, tracker.Add("https://example.com/b"))
	require.False(t, tracker.Add("https://example.com/a"))
	require.Equal(t, 2, tracker.Count())
}

func TestRateLimiterWaitsBetweenCalls(t *testing.T) {
	limiter := NewRateLimiter(20, 30)

	limiter.Wait()
	start := time.Now()
	limiter.Wait()
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestLoggerScopePrefix(t *testing.T) {
	logger := NewLogger().WithScope("booking")
	require.Contains(t, logger.prefix(), "[booking]")
}
