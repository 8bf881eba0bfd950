package nanomessenger

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nanomessenger/client-go/internal/metrics"
	"github.com/nanomessenger/client-go/mode"
	"github.com/nanomessenger/client-go/protocol"
)

// Seal signs body as from, encrypts it to the recipient and wraps it in a
// quantum-safe envelope addressed to the inbox derived from the recipient's
// key and counter. The message mode is the sender's key mode, which must meet
// both the configured minimum and the configured operating mode.
func (c *Client) Seal(from Signer, to PublicKeys, body []byte, counter uint64, opts ...protocol.PayloadOption) (*protocol.QuantumSafeEnvelope, error) {
	cfg := c.Config()
	m := from.Mode()
	if err := cfg.CheckIncoming(m); err != nil {
		return nil, err
	}
	if m.SecurityLevel() < cfg.Mode.SecurityLevel() {
		c.logger.Warn().
			Stringer("sender_mode", m).
			Stringer("configured_mode", cfg.Mode).
			Msg("sender key below configured mode")
		return nil, &mode.PolicyError{
			Mode:    m,
			Minimum: cfg.Mode,
			Reason:  fmt.Sprintf("sender key is %s but the configured mode is %s", m, cfg.Mode),
		}
	}

	payload := protocol.NewPayload(from.PublicKeyString(), body, counter, opts...)
	if err := payload.Sign(from); err != nil {
		return nil, err
	}
	data, err := payload.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err) //coverage:ignore
	}

	ciphertext, err := to.Encrypt(m, data)
	if err != nil {
		return nil, fmt.Errorf("encrypt payload: %w", err)
	}

	inboxID := protocol.DeriveInboxID(to.PublicKeyString(), counter)
	env, err := protocol.NewQuantumSafeEnvelope(m, inboxID, ciphertext, protocol.WithTTL(c.envelopeTTL))
	if err != nil {
		return nil, err
	}

	c.metrics.Sealed(m.String())
	c.logger.Debug().
		Stringer("mode", m).
		Str("inbox_id", inboxID).
		Uint64("counter", counter).
		Msg("message sealed")
	return env, nil
}

// Open checks the envelope against the configured policy, decrypts it with
// ours and verifies the payload signature. The signed payload mode must
// equal the envelope mode.
func (c *Client) Open(env *protocol.QuantumSafeEnvelope, ours KeyPair) (*protocol.MessagePayload, error) {
	if env == nil {
		c.metrics.Rejected(metrics.ReasonFormat)
		return nil, &EnvelopeFormatError{Reason: "missing envelope"}
	}
	payload, err := c.open(env, ours)
	if err != nil {
		reason := rejectionReason(err)
		c.metrics.Rejected(reason)
		c.logger.Debug().
			Str("reason", reason).
			Str("inbox_id", env.InboxID).
			Err(err).
			Msg("message rejected")
		return nil, err
	}

	c.metrics.Opened(env.CryptoMode.String())
	c.logger.Debug().
		Stringer("mode", env.CryptoMode).
		Str("inbox_id", env.InboxID).
		Uint64("counter", payload.Counter).
		Msg("message opened")
	return payload, nil
}

func (c *Client) open(env *protocol.QuantumSafeEnvelope, ours KeyPair) (*protocol.MessagePayload, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if env.IsExpired() {
		return nil, fmt.Errorf("%w: envelope expired at %s", ErrExpired, env.Expiry.Format(time.RFC3339))
	}
	if err := c.Config().CheckIncoming(env.CryptoMode); err != nil {
		return nil, err
	}

	ciphertext, err := env.DecodePayload()
	if err != nil {
		return nil, err //coverage:ignore
	}
	plaintext, err := ours.Decrypt(env.CryptoMode, ciphertext)
	if err != nil {
		return nil, err
	}

	payload, err := protocol.ParsePayload(plaintext)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = payload.VerifySignature()
	c.metrics.ObserveVerify(payload.SignerMode().String(), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	// Legacy senders leave crypto_mode unset; their mode is the key prefix,
	// which is covered by the signature.
	signed := payload.CryptoMode
	if signed == 0 {
		signed = payload.SignerMode()
	}
	if signed != env.CryptoMode {
		return nil, &mode.PolicyError{
			Mode:   signed,
			Reason: fmt.Sprintf("payload signed in %s but envelope declares %s", signed, env.CryptoMode),
		}
	}
	return payload, nil
}

// VerifyPayloads checks the signatures of payloads concurrently. It returns
// the first failure, annotated with the payload's index.
func (c *Client) VerifyPayloads(ctx context.Context, payloads []*protocol.MessagePayload) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, p := range payloads {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("payload %d: %w", i, &EnvelopeFormatError{Field: "payload", Reason: "missing payload"})
			}
			start := time.Now()
			err := p.VerifySignature()
			c.metrics.ObserveVerify(p.SignerMode().String(), time.Since(start).Seconds())
			if err != nil {
				return fmt.Errorf("payload %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// rejectionReason maps an error to its metrics label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrReplayDetected):
		return metrics.ReasonReplay
	case errors.Is(err, ErrExpired):
		return metrics.ReasonExpired
	case errors.Is(err, ErrModePolicyViolation):
		return metrics.ReasonPolicy
	case errors.Is(err, ErrSignatureInvalid):
		return metrics.ReasonSignature
	case errors.Is(err, ErrAuthenticationFailed):
		return metrics.ReasonDecrypt
	default:
		return metrics.ReasonFormat
	}
}
