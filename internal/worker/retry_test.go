package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDelayGrowth(t *testing.T) {
	policy := RetryPolicy{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2,
	}

	assert.Equal(t, 100*time.Millisecond, policy.NextDelay(1))
	assert.Equal(t, 200*time.Millisecond, policy.NextDelay(2))
	assert.Equal(t, 400*time.Millisecond, policy.NextDelay(3))
	assert.Equal(t, time.Second, policy.NextDelay(10), "delay clamps at MaxDelay")
}

func TestNextDelayDefaults(t *testing.T) {
	var policy RetryPolicy

	assert.Equal(t, time.Second, policy.NextDelay(0))
	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
}

func TestDoSucceedsFirstTry(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond}

	calls := 0
	wantErr := errors.New("permanent")
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls, "MaxRetries bounds the retries, not the attempts")
}

func TestDoStopsOnContextCancel(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 10, InitialDelay: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := policy.Do(ctx, func(context.Context) error {
		calls++
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, calls, 11)
}
