package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the config file. Pointers distinguish "unset" from
// zero so an explicit 0 in the file still overrides the default.
// Durations are strings in Go duration syntax ("500ms", "2s").
type fileConfig struct {
	MaxAttempts       *int     `yaml:"max_attempts" toml:"max_attempts"`
	Backoff           *string  `yaml:"backoff" toml:"backoff"`
	BackoffMultiplier *float64 `yaml:"backoff_multiplier" toml:"backoff_multiplier"`
	BackoffMax        *string  `yaml:"backoff_max" toml:"backoff_max"`
	BackoffJitter     *bool    `yaml:"backoff_jitter" toml:"backoff_jitter"`
	RequestTimeout    *string  `yaml:"request_timeout" toml:"request_timeout"`
	StreamID          *string  `yaml:"stream_id" toml:"stream_id"`
	ReceiptPath       *string  `yaml:"receipt_path" toml:"receipt_path"`
	LedgerPath        *string  `yaml:"ledger_path" toml:"ledger_path"`
	ListenAddr        *string  `yaml:"listen_addr" toml:"listen_addr"`
	LogLevel          *string  `yaml:"log_level" toml:"log_level"`
}

func readFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
			return fileConfig{}, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &fc)
		if err != nil {
			return fileConfig{}, fmt.Errorf("parse toml %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fileConfig{}, fmt.Errorf("parse toml %s: unknown keys %v", path, undecoded)
		}
	default:
		return fileConfig{}, fmt.Errorf("config %s: unsupported extension %q (want .yaml, .yml or .toml)", path, ext)
	}
	return fc, nil
}

func (fc fileConfig) apply(c *Config) error {
	if fc.MaxAttempts != nil {
		c.MaxAttempts = *fc.MaxAttempts
	}
	if err := setDuration(&c.Backoff, "backoff", fc.Backoff); err != nil {
		return err
	}
	if fc.BackoffMultiplier != nil {
		c.BackoffMultiplier = *fc.BackoffMultiplier
	}
	if err := setDuration(&c.BackoffMax, "backoff_max", fc.BackoffMax); err != nil {
		return err
	}
	if fc.BackoffJitter != nil {
		c.BackoffJitter = *fc.BackoffJitter
	}
	if err := setDuration(&c.RequestTimeout, "request_timeout", fc.RequestTimeout); err != nil {
		return err
	}
	setString(&c.StreamID, fc.StreamID)
	setString(&c.ReceiptPath, fc.ReceiptPath)
	setString(&c.LedgerPath, fc.LedgerPath)
	setString(&c.ListenAddr, fc.ListenAddr)
	setString(&c.LogLevel, fc.LogLevel)
	return nil
}

func setDuration(dst *time.Duration, key string, v *string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
