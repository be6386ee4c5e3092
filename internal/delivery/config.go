package delivery

import (
	"errors"
	"strings"
	"time"
)

// Defaults for Config.
const (
	DefaultMaxAttempts = 5
	DefaultBackoff     = 500 * time.Millisecond
)

// ErrEndpointRequired is returned when a Sender is built without an endpoint.
var ErrEndpointRequired = errors.New("delivery: endpoint required")

// ErrChannelRequired is returned when a Sender is built without a channel.
var ErrChannelRequired = errors.New("delivery: channel required")

// BackoffConfig shapes the delay between failed attempts.
//
// With Multiplier 1 and Jitter off (the default) every wait is exactly
// InitialDelay.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// FixedBackoff returns a constant-interval schedule.
func FixedBackoff(d time.Duration) BackoffConfig {
	return BackoffConfig{InitialDelay: d, Multiplier: 1}
}

// Config holds the retry policy for one bus endpoint.
type Config struct {
	// Endpoint is the resolved frame URL. It is read-only after start.
	Endpoint    string
	MaxAttempts int
	Backoff     BackoffConfig
}

// DefaultConfig returns five attempts with a fixed 500ms backoff.
func DefaultConfig(endpoint string) Config {
	return Config{
		Endpoint:    endpoint,
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     FixedBackoff(DefaultBackoff),
	}
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Backoff == (BackoffConfig{}) {
		c.Backoff = FixedBackoff(DefaultBackoff)
	}
	if c.Backoff.InitialDelay < 0 {
		c.Backoff.InitialDelay = 0
	}
	if c.Backoff.Multiplier < 1.0 {
		c.Backoff.Multiplier = 1.0
	}
	return c
}
