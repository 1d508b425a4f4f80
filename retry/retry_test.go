package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOpts(max int) func(o *Options) {
	return func(o *Options) {
		o.MaxAttempts = max
		o.BaseDelay = time.Millisecond
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	}, fastOpts(3))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsExactlyMaxAttempts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	}, fastOpts(3))
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, boom)
}

func TestDo_RecoversMidway(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, fastOpts(5))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_DelayGrowsWithAttempt(t *testing.T) {
	var gaps []time.Duration
	last := time.Now()
	err := Do(context.Background(), func(context.Context) error {
		now := time.Now()
		gaps = append(gaps, now.Sub(last))
		last = now
		return errors.New("always")
	}, func(o *Options) {
		o.MaxAttempts = 3
		o.BaseDelay = 20 * time.Millisecond
	})
	require.Error(t, err)
	require.Len(t, gaps, 3)
	// Delay before attempt k is base*(k-1): attempt 2 waits ~20ms, attempt 3
	// waits ~40ms. Elapsed time is monotonically non-decreasing per attempt.
	assert.GreaterOrEqual(t, gaps[1], 20*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[2], 40*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[2], gaps[1])
}

func TestDo_ContextCancelAbortsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, func(context.Context) error {
		calls++
		return errors.New("always")
	}, func(o *Options) {
		o.MaxAttempts = 5
		o.BaseDelay = time.Hour
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryObservesAttempts(t *testing.T) {
	var attempts []int
	_ = Do(context.Background(), func(context.Context) error {
		return errors.New("always")
	}, fastOpts(3), func(o *Options) {
		o.OnRetry = func(attempt int, err error) {
			attempts = append(attempts, attempt)
			assert.Error(t, err)
		}
	})
	assert.Equal(t, []int{2, 3}, attempts)
}

func TestDoValue(t *testing.T) {
	v, err := DoValue(context.Background(), func(context.Context) (string, error) {
		return "ok", nil
	}, fastOpts(2))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	_, err = DoValue(context.Background(), func(context.Context) (string, error) {
		return "", errors.New("down")
	}, fastOpts(2))
	assert.Error(t, err)
}
