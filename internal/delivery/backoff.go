package delivery

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// NextDelay returns the wait after failed attempt N (1-based).
//
// The delay is InitialDelay * Multiplier^(N-1). Jitter stretches it by a
// factor in [1.0, 1.5), so a jittered wait is never shorter than the
// unjittered one. MaxDelay, when set, caps the result but never below
// InitialDelay.
func NextDelay(cfg BackoffConfig, attempt int, rng *rand.Rand) time.Duration {
	if cfg.InitialDelay <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	if cfg.Multiplier < 1.0 {
		cfg.Multiplier = 1.0
	}
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if cfg.Jitter && rng != nil {
		delay *= 1 + 0.5*rng.Float64()
	}
	if ceiling := max(cfg.MaxDelay, cfg.InitialDelay); cfg.MaxDelay > 0 && delay > float64(ceiling) {
		delay = float64(ceiling)
	}
	return time.Duration(delay)
}

// Sleeper waits between attempts.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper waits on a timer and returns early if ctx is done.
type TimerSleeper struct{}

// Sleep blocks for d or until ctx is done.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
