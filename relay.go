package nanomessenger

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nanomessenger/client-go/internal/metrics"
	"github.com/nanomessenger/client-go/mode"
	"github.com/nanomessenger/client-go/protocol"
)

// Relay decides whether envelopes may be forwarded. It needs no key
// material: only the envelope structure, expiry and declared mode are checked.
type Relay struct {
	cfg     mode.Config
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRelay creates a standalone relay gate enforcing cfg. Only the logger
// and metrics options apply.
func NewRelay(cfg mode.Config, opts ...Option) (*Relay, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("relay: %w", err)
	}
	rc := defaultClientConfig()
	for _, opt := range opts {
		opt(rc)
	}

	r := &Relay{
		cfg:    cfg,
		logger: rc.logger,
		now:    time.Now,
	}
	if rc.registerer != nil {
		r.metrics = metrics.New(rc.registerer)
	}
	return r, nil
}

// Config returns the policy the relay enforces.
func (r *Relay) Config() mode.Config {
	return r.cfg
}

// Admit returns nil if env may be forwarded.
func (r *Relay) Admit(env *protocol.QuantumSafeEnvelope) error {
	if err := r.admit(env); err != nil {
		reason := rejectionReason(err)
		r.metrics.Refused(reason)
		r.logger.Info().Str("reason", reason).Err(err).Msg("envelope refused")
		return err
	}

	r.metrics.Admitted(env.CryptoMode.String())
	r.logger.Debug().
		Stringer("mode", env.CryptoMode).
		Str("inbox_id", env.InboxID).
		Msg("envelope admitted")
	return nil
}

func (r *Relay) admit(env *protocol.QuantumSafeEnvelope) error {
	if env == nil {
		return &EnvelopeFormatError{Reason: "missing envelope"}
	}
	if err := env.Validate(); err != nil {
		return err
	}
	if env.IsExpiredAt(r.now()) {
		return fmt.Errorf("%w: envelope expired at %s", ErrExpired, env.Expiry.Format(time.RFC3339))
	}
	return r.cfg.CheckIncoming(env.CryptoMode)
}

// AdmitJSON parses an envelope of either version and admits it. Legacy
// envelopes are treated as Classical. The parsed envelope is returned on
// success.
func (r *Relay) AdmitJSON(data []byte) (*protocol.QuantumSafeEnvelope, error) {
	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		r.metrics.Refused(metrics.ReasonFormat)
		r.logger.Info().Str("reason", metrics.ReasonFormat).Err(err).Msg("envelope refused")
		return nil, err
	}
	if err := r.Admit(env); err != nil {
		return nil, err
	}
	return env, nil
}
