package nanomessenger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/nanomessenger/client-go/mode"
)

// DefaultReplayWindow is how many counters below the highest seen an Inbox
// still accepts from one sender.
const DefaultReplayWindow = 64

// clientConfig holds configuration for the client.
type clientConfig struct {
	cryptoConfig *mode.Config
	logger       zerolog.Logger
	registerer   prometheus.Registerer
	replayWindow int
	envelopeTTL  time.Duration
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		logger:       zerolog.Nop(),
		replayWindow: DefaultReplayWindow,
	}
}

// Option configures the client.
type Option func(*clientConfig)

// WithCryptoConfig sets the crypto config at construction. It counts as the
// one allowed configuration, so a later Configure call fails.
func WithCryptoConfig(cfg mode.Config) Option {
	return func(c *clientConfig) {
		c.cryptoConfig = &cfg
	}
}

// WithLogger sets the logger. Default: zerolog.Nop().
func WithLogger(logger zerolog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithMetrics registers the client's Prometheus collectors with reg.
// Registering twice with the same registry panics.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.registerer = reg
	}
}

// WithReplayWindow sets the per-sender replay window of inboxes.
// Default: 64
func WithReplayWindow(n int) Option {
	return func(c *clientConfig) {
		c.replayWindow = n
	}
}

// WithEnvelopeTTL stamps outgoing envelopes with an expiry of now + ttl.
// Default: no expiry.
func WithEnvelopeTTL(ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.envelopeTTL = ttl
	}
}
