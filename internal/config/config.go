package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/roach88/olp/internal/delivery"
	"github.com/roach88/olp/internal/frame"
	"github.com/roach88/olp/internal/receipt"
	"github.com/roach88/olp/internal/transport"
)

// Defaults not owned by another package.
const (
	DefaultLedgerPath = "data/olp.db"
	DefaultListenAddr = "127.0.0.1:8089"
	DefaultDotEnv     = ".env"
)

// Config is the resolved client configuration.
type Config struct {
	// Endpoint comes from ResolveEndpoint and is never read from a file.
	Endpoint string

	MaxAttempts       int           `env:"OLP_MAX_ATTEMPTS"`
	Backoff           time.Duration `env:"OLP_BACKOFF"`
	BackoffMultiplier float64       `env:"OLP_BACKOFF_MULTIPLIER"`
	BackoffMax        time.Duration `env:"OLP_BACKOFF_MAX"`
	BackoffJitter     bool          `env:"OLP_BACKOFF_JITTER"`
	RequestTimeout    time.Duration `env:"OLP_REQUEST_TIMEOUT"`

	StreamID    string `env:"OLP_STREAM_ID"`
	ReceiptPath string `env:"OLP_RECEIPT_PATH"`
	LedgerPath  string `env:"OLP_LEDGER_PATH"`
	ListenAddr  string `env:"OLP_LISTEN_ADDR"`
	LogLevel    string `env:"OLP_LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Endpoint:          DefaultEndpoint,
		MaxAttempts:       delivery.DefaultMaxAttempts,
		Backoff:           delivery.DefaultBackoff,
		BackoffMultiplier: 1,
		RequestTimeout:    transport.DefaultTimeout,
		StreamID:          frame.DefaultStreamID,
		ReceiptPath:       receipt.DefaultPath,
		LedgerPath:        DefaultLedgerPath,
		ListenAddr:        DefaultListenAddr,
		LogLevel:          "info",
	}
}

// LoadOptions selects the optional sources.
type LoadOptions struct {
	// File is a YAML or TOML config file. Empty means none.
	File string
	// DotEnv is loaded into the process environment when present.
	// Variables already set are not overridden. Empty means DefaultDotEnv.
	DotEnv string
}

// Load builds a Config from defaults, the optional file, and the
// environment, in increasing precedence.
func Load(opts LoadOptions) (Config, error) {
	dotenv := opts.DotEnv
	if dotenv == "" {
		dotenv = DefaultDotEnv
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
	}

	cfg := Default()
	if opts.File != "" {
		fc, err := readFile(opts.File)
		if err != nil {
			return Config{}, err
		}
		if err := fc.apply(&cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", opts.File, err)
		}
	}

	// env.Parse only touches fields whose variable is set, so file values
	// survive unless overridden.
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Endpoint = ResolveEndpoint()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	var errs []error
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be >= 1, got %d", c.MaxAttempts))
	}
	if c.Backoff < 0 {
		errs = append(errs, fmt.Errorf("backoff must be >= 0, got %s", c.Backoff))
	}
	if c.BackoffMultiplier < 1 {
		errs = append(errs, fmt.Errorf("backoff_multiplier must be >= 1, got %g", c.BackoffMultiplier))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be >= 0, got %s", c.RequestTimeout))
	}
	return errors.Join(errs...)
}

// Delivery returns the retry policy for the resolved endpoint.
func (c Config) Delivery() delivery.Config {
	return delivery.Config{
		Endpoint:    c.Endpoint,
		MaxAttempts: c.MaxAttempts,
		Backoff: delivery.BackoffConfig{
			InitialDelay: c.Backoff,
			Multiplier:   max(c.BackoffMultiplier, 1),
			MaxDelay:     c.BackoffMax,
			Jitter:       c.BackoffJitter,
		},
	}.WithDefaults()
}
