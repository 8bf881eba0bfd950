package nanomessenger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nanomessenger/client-go/internal/config"
	"github.com/nanomessenger/client-go/internal/metrics"
	"github.com/nanomessenger/client-go/mode"
)

// Client holds the crypto configuration and the ambient logger and metrics.
// It is safe for concurrent use.
type Client struct {
	mu         sync.RWMutex
	cfg        mode.Config
	configured bool

	logger       zerolog.Logger
	metrics      *metrics.Metrics
	replayWindow int
	envelopeTTL  time.Duration
}

// New creates a client. Without WithCryptoConfig it starts with
// mode.DefaultConfig() and may be configured once with Configure.
func New(opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.replayWindow < 1 || cfg.replayWindow > config.MaxReplayWindow {
		return nil, fmt.Errorf("replay window must be between 1 and %d, got %d", config.MaxReplayWindow, cfg.replayWindow)
	}
	if cfg.envelopeTTL < 0 {
		return nil, fmt.Errorf("envelope TTL must not be negative, got %s", cfg.envelopeTTL)
	}

	c := &Client{
		cfg:          mode.DefaultConfig(),
		logger:       cfg.logger,
		replayWindow: cfg.replayWindow,
		envelopeTTL:  cfg.envelopeTTL,
	}
	if cfg.cryptoConfig != nil {
		if err := c.Configure(*cfg.cryptoConfig); err != nil {
			return nil, err
		}
	}
	if cfg.registerer != nil {
		c.metrics = metrics.New(cfg.registerer)
	}
	return c, nil
}

// NewFromFile loads configuration from a YAML file and NANO_* environment
// variables and builds a configured client from it. An empty path uses
// defaults and the environment only. Options are applied after the loaded
// values and may override them, except for the crypto config.
func NewFromFile(ctx context.Context, path string, opts ...Option) (*Client, error) {
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Log.Logger(nil)
	if err != nil {
		return nil, err //coverage:ignore
	}

	base := []Option{
		WithLogger(logger),
		WithReplayWindow(cfg.Inbox.ReplayWindow),
		WithEnvelopeTTL(cfg.Inbox.EnvelopeTTL),
	}
	opts = append(base, opts...)
	opts = append(opts, WithCryptoConfig(cfg.Crypto))
	return New(opts...)
}

// Configure validates and installs the crypto config. It succeeds at most
// once per client; later calls return ErrConfigAlreadyInitialized.
func (c *Client) Configure(cfg mode.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.configured {
		return ErrConfigAlreadyInitialized
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	c.cfg = cfg
	c.configured = true

	c.logger.Info().
		Stringer("mode", cfg.Mode).
		Stringer("minimum_mode", cfg.MinimumMode).
		Bool("allow_auto_upgrade", cfg.AllowAutoUpgrade).
		Bool("adaptive_mode", cfg.AdaptiveMode).
		Msg("crypto config initialized")
	return nil
}

// Config returns the active crypto config.
func (c *Client) Config() mode.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// IsConfigured reports whether Configure has succeeded.
func (c *Client) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configured
}

// GenerateKeyPair creates a key pair in the configured mode.
func (c *Client) GenerateKeyPair() (KeyPair, error) {
	m := c.Config().Mode
	kp, err := GenerateKeyPair(m)
	if err != nil {
		return nil, fmt.Errorf("generate %s key pair: %w", m, err)
	}
	c.logger.Debug().
		Stringer("mode", m).
		Str("fingerprint", kp.PublicKeys().Fingerprint()).
		Msg("key pair generated")
	return kp, nil
}

// NextMode returns the mode for the next outgoing message given a
// recommendation from an adaptive selector.
func (c *Client) NextMode(recommended mode.Mode) mode.Mode {
	cfg := c.Config()
	next := cfg.NextMode(recommended)
	if next != cfg.Mode {
		c.logger.Debug().
			Stringer("from", cfg.Mode).
			Stringer("to", next).
			Msg("crypto mode upgraded")
	}
	return next
}

// Relay returns an admission gate that shares the client's config, logger
// and metrics.
func (c *Client) Relay() *Relay {
	return &Relay{
		cfg:     c.Config(),
		logger:  c.logger,
		metrics: c.metrics,
		now:     time.Now,
	}
}
