package delivery

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDelayFixed(t *testing.T) {
	cfg := FixedBackoff(500 * time.Millisecond)
	for attempt := 1; attempt <= 5; attempt++ {
		assert.Equal(t, 500*time.Millisecond, NextDelay(cfg, attempt, nil))
	}
}

func TestNextDelayExponentialCapped(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2, MaxDelay: time.Second}

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for i, w := range want {
		assert.Equal(t, w, NextDelay(cfg, i+1, nil), "attempt %d", i+1)
	}
}

func TestNextDelayJitterBounds(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 1, Jitter: true}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		d := NextDelay(cfg, 1, rng)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond, "jitter never shortens the wait")
		assert.Less(t, d, 150*time.Millisecond)
	}
}

func TestNextDelayJitterRespectsCap(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2, MaxDelay: 300 * time.Millisecond, Jitter: true}
	rng := rand.New(rand.NewSource(11))

	for attempt := 1; attempt <= 6; attempt++ {
		d := NextDelay(cfg, attempt, rng)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond, "attempt %d", attempt)
		assert.LessOrEqual(t, d, 300*time.Millisecond, "attempt %d", attempt)
	}
}

func TestNextDelayDegenerateInputs(t *testing.T) {
	assert.Zero(t, NextDelay(BackoffConfig{}, 3, nil))
	assert.Equal(t, 10*time.Millisecond, NextDelay(BackoffConfig{InitialDelay: 10 * time.Millisecond, Multiplier: 0.5}, 4, nil))
	assert.Equal(t, 10*time.Millisecond, NextDelay(FixedBackoff(10*time.Millisecond), 0, nil))
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{Endpoint: " http://x/frame "}.WithDefaults()
	assert.Equal(t, "http://x/frame", cfg.Endpoint)
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, FixedBackoff(DefaultBackoff), cfg.Backoff)

	custom := Config{Endpoint: "e", MaxAttempts: 2, Backoff: BackoffConfig{InitialDelay: time.Second}}.WithDefaults()
	assert.Equal(t, 2, custom.MaxAttempts)
	assert.Equal(t, time.Second, custom.Backoff.InitialDelay)
	assert.Equal(t, 1.0, custom.Backoff.Multiplier)
}

func TestTimerSleeper(t *testing.T) {
	start := time.Now()
	require.NoError(t, TimerSleeper{}.Sleep(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, TimerSleeper{}.Sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, TimerSleeper{}.Sleep(ctx, 0), context.Canceled)
	assert.NoError(t, TimerSleeper{}.Sleep(context.Background(), 0))
}
