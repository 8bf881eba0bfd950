// Package config loads client configuration from a YAML file and NANO_*
// environment variables.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/nanomessenger/client-go/mode"
)

// MaxReplayWindow bounds the per-sender replay window.
const MaxReplayWindow = 4096

// Config is the full client configuration.
type Config struct {
	Crypto mode.Config `mapstructure:"crypto" yaml:"crypto"`
	Inbox  InboxConfig `mapstructure:"inbox" yaml:"inbox"`
	Log    LogConfig   `mapstructure:"log" yaml:"log"`
}

// InboxConfig configures receiving.
type InboxConfig struct {
	// ReplayWindow is how many counters below the highest seen are still accepted.
	ReplayWindow int `mapstructure:"replay_window" yaml:"replay_window"`
	// EnvelopeTTL is the expiry stamped on outgoing envelopes. Zero means none.
	EnvelopeTTL time.Duration `mapstructure:"envelope_ttl" yaml:"envelope_ttl"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	// Level is a zerolog level name such as "debug" or "info".
	Level string `mapstructure:"level" yaml:"level"`
	// Format is "console" or "json".
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Crypto.Validate(); err != nil {
		return fmt.Errorf("crypto: %w", err)
	}
	if c.Inbox.ReplayWindow < 1 || c.Inbox.ReplayWindow > MaxReplayWindow {
		return fmt.Errorf("inbox.replay_window must be between 1 and %d, got %d", MaxReplayWindow, c.Inbox.ReplayWindow)
	}
	if c.Inbox.EnvelopeTTL < 0 {
		return fmt.Errorf("inbox.envelope_ttl must not be negative, got %s", c.Inbox.EnvelopeTTL)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// Logger builds a zerolog logger writing to w. A nil w means stderr.
func (l LogConfig) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log.level: %w", err)
	}
	if w == nil {
		w = os.Stderr
	}
	if l.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
