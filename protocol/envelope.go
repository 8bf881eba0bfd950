package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nanomessenger/client-go/internal/crypto"
	"github.com/nanomessenger/client-go/internal/cryptoerrors"
	"github.com/nanomessenger/client-go/mode"
)

// Envelope versions.
const (
	LegacyVersion      = "1.1"
	QuantumSafeVersion = "2.0-quantum"
)

// NonceSize is the size of the random envelope nonce in bytes.
const NonceSize = 16

// MessageEnvelope is the legacy (pre quantum-safe) wire envelope.
type MessageEnvelope struct {
	Version string     `json:"version"`
	InboxID string     `json:"inbox_id"`
	Payload string     `json:"payload"`
	Nonce   string     `json:"nonce"`
	Expiry  *time.Time `json:"expiry,omitempty"`
}

// QuantumSafeEnvelope is the current wire envelope. CryptoMode is readable
// without decrypting, so relays can enforce policy on it.
type QuantumSafeEnvelope struct {
	Version      string     `json:"version"`
	CryptoMode   mode.Mode  `json:"crypto_mode"`
	InboxID      string     `json:"inbox_id"`
	Payload      string     `json:"payload"`
	Nonce        string     `json:"nonce"`
	LegacyCompat *bool      `json:"legacy_compat,omitempty"`
	Expiry       *time.Time `json:"expiry,omitempty"`
}

type envelopeOptions struct {
	expiry       *time.Time
	legacyCompat *bool
}

// EnvelopeOption configures envelope construction.
type EnvelopeOption func(*envelopeOptions)

// WithExpiry sets an absolute expiry. It is stored in UTC at second precision.
func WithExpiry(t time.Time) EnvelopeOption {
	return func(o *envelopeOptions) {
		e := t.UTC().Truncate(time.Second)
		o.expiry = &e
	}
}

// WithTTL sets the expiry to now + ttl. Non-positive values are ignored.
func WithTTL(ttl time.Duration) EnvelopeOption {
	return func(o *envelopeOptions) {
		if ttl <= 0 {
			return
		}
		WithExpiry(time.Now().Add(ttl))(o)
	}
}

// WithLegacyCompat records whether the message came from a legacy sender.
// Only quantum-safe envelopes carry the flag.
func WithLegacyCompat(compat bool) EnvelopeOption {
	return func(o *envelopeOptions) {
		o.legacyCompat = &compat
	}
}

func applyEnvelopeOptions(opts []EnvelopeOption) envelopeOptions {
	var o envelopeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newNonce() (string, error) {
	nonce, err := crypto.RandomBytes(NonceSize)
	if err != nil {
		return "", fmt.Errorf("generate envelope nonce: %w", err)
	}
	return crypto.ToBase64(nonce), nil
}

// NewMessageEnvelope wraps payload bytes in a legacy envelope with a fresh nonce.
func NewMessageEnvelope(inboxID string, payload []byte, opts ...EnvelopeOption) (*MessageEnvelope, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	o := applyEnvelopeOptions(opts)
	return &MessageEnvelope{
		Version: LegacyVersion,
		InboxID: inboxID,
		Payload: crypto.ToBase64(payload),
		Nonce:   nonce,
		Expiry:  o.expiry,
	}, nil
}

// NewQuantumSafeEnvelope wraps payload bytes produced under m.
func NewQuantumSafeEnvelope(m mode.Mode, inboxID string, payload []byte, opts ...EnvelopeOption) (*QuantumSafeEnvelope, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %s", mode.ErrUnknownMode, m)
	}
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	o := applyEnvelopeOptions(opts)
	return &QuantumSafeEnvelope{
		Version:      QuantumSafeVersion,
		CryptoMode:   m,
		InboxID:      inboxID,
		Payload:      crypto.ToBase64(payload),
		Nonce:        nonce,
		LegacyCompat: o.legacyCompat,
		Expiry:       o.expiry,
	}, nil
}

// DecodePayload returns the raw payload bytes.
func (e *MessageEnvelope) DecodePayload() ([]byte, error) { return decodeField("payload", e.Payload) }

// DecodeNonce returns the raw nonce bytes.
func (e *MessageEnvelope) DecodeNonce() ([]byte, error) { return decodeNonce(e.Nonce) }

// IsExpired reports whether the expiry has passed. No expiry never expires.
func (e *MessageEnvelope) IsExpired() bool { return isExpiredAt(e.Expiry, time.Now()) }

// IsExpiredAt reports whether the envelope is expired at now.
func (e *MessageEnvelope) IsExpiredAt(now time.Time) bool { return isExpiredAt(e.Expiry, now) }

// Validate checks version, inbox id, payload encoding and nonce length.
func (e *MessageEnvelope) Validate() error {
	if e.Version != LegacyVersion {
		return &cryptoerrors.EnvelopeFormatError{
			Field:  "version",
			Reason: fmt.Sprintf("got %q, want %q", e.Version, LegacyVersion),
		}
	}
	return validateCommon(e.InboxID, e.Payload, e.Nonce)
}

// DecodePayload returns the raw payload bytes.
func (e *QuantumSafeEnvelope) DecodePayload() ([]byte, error) {
	return decodeField("payload", e.Payload)
}

// DecodeNonce returns the raw nonce bytes.
func (e *QuantumSafeEnvelope) DecodeNonce() ([]byte, error) { return decodeNonce(e.Nonce) }

// IsExpired reports whether the expiry has passed. No expiry never expires.
func (e *QuantumSafeEnvelope) IsExpired() bool { return isExpiredAt(e.Expiry, time.Now()) }

// IsExpiredAt reports whether the envelope is expired at now.
func (e *QuantumSafeEnvelope) IsExpiredAt(now time.Time) bool { return isExpiredAt(e.Expiry, now) }

// IsLegacyCompat reports whether the envelope was upgraded from a legacy one.
func (e *QuantumSafeEnvelope) IsLegacyCompat() bool {
	return e.LegacyCompat != nil && *e.LegacyCompat
}

// Validate checks version, mode, inbox id, payload encoding and nonce length.
func (e *QuantumSafeEnvelope) Validate() error {
	if e.Version != QuantumSafeVersion {
		return &cryptoerrors.EnvelopeFormatError{
			Field:  "version",
			Reason: fmt.Sprintf("got %q, want %q", e.Version, QuantumSafeVersion),
		}
	}
	if !e.CryptoMode.IsValid() {
		return &cryptoerrors.EnvelopeFormatError{Field: "crypto_mode", Reason: "missing or unknown mode"}
	}
	return validateCommon(e.InboxID, e.Payload, e.Nonce)
}

// ToLegacy converts to a legacy envelope with a fresh nonce. The inbox id,
// payload and expiry are kept. The mode is dropped, so receivers will treat
// the result as Classical; use Downgrade to refuse that for stronger modes.
func (e *QuantumSafeEnvelope) ToLegacy() (*MessageEnvelope, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	return &MessageEnvelope{
		Version: LegacyVersion,
		InboxID: e.InboxID,
		Payload: e.Payload,
		Nonce:   nonce,
		Expiry:  cloneTime(e.Expiry),
	}, nil
}

// Downgrade converts to a legacy envelope only when the envelope is
// Classical. Any other mode fails with a *mode.PolicyError.
func (e *QuantumSafeEnvelope) Downgrade() (*MessageEnvelope, error) {
	if e.CryptoMode != mode.Classical {
		return nil, &mode.PolicyError{
			Mode:   e.CryptoMode,
			Reason: fmt.Sprintf("cannot downgrade %s envelope to legacy format", e.CryptoMode),
		}
	}
	return e.ToLegacy()
}

// FromLegacy upgrades a legacy envelope. The result is Classical with
// LegacyCompat set and a fresh nonce.
func FromLegacy(e *MessageEnvelope) (*QuantumSafeEnvelope, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}
	compat := true
	return &QuantumSafeEnvelope{
		Version:      QuantumSafeVersion,
		CryptoMode:   mode.Classical,
		InboxID:      e.InboxID,
		Payload:      e.Payload,
		Nonce:        nonce,
		LegacyCompat: &compat,
		Expiry:       cloneTime(e.Expiry),
	}, nil
}

// Marshal encodes the envelope as JSON.
func (e *MessageEnvelope) Marshal() ([]byte, error) { return json.Marshal(e) }

// Marshal encodes the envelope as JSON.
func (e *QuantumSafeEnvelope) Marshal() ([]byte, error) { return json.Marshal(e) }

// ParseMessageEnvelope decodes and validates a legacy envelope.
func ParseMessageEnvelope(data []byte) (*MessageEnvelope, error) {
	var e MessageEnvelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, &cryptoerrors.EnvelopeFormatError{Reason: "invalid JSON", Err: err}
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// ParseQuantumSafeEnvelope decodes and validates a quantum-safe envelope.
func ParseQuantumSafeEnvelope(data []byte) (*QuantumSafeEnvelope, error) {
	var e QuantumSafeEnvelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, &cryptoerrors.EnvelopeFormatError{Reason: "invalid JSON", Err: err}
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// ParseEnvelope accepts either version. Legacy envelopes are upgraded with
// FromLegacy, so the caller always sees a quantum-safe envelope.
func ParseEnvelope(data []byte) (*QuantumSafeEnvelope, error) {
	var header struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, &cryptoerrors.EnvelopeFormatError{Reason: "invalid JSON", Err: err}
	}

	switch header.Version {
	case QuantumSafeVersion:
		return ParseQuantumSafeEnvelope(data)
	case LegacyVersion:
		legacy, err := ParseMessageEnvelope(data)
		if err != nil {
			return nil, err
		}
		return FromLegacy(legacy)
	default:
		return nil, &cryptoerrors.EnvelopeFormatError{
			Field:  "version",
			Reason: fmt.Sprintf("unsupported version %q", header.Version),
		}
	}
}

func validateCommon(inboxID, payload, nonce string) error {
	if inboxID == "" {
		return &cryptoerrors.EnvelopeFormatError{Field: "inbox_id", Reason: "required"}
	}
	if _, err := decodeField("payload", payload); err != nil {
		return err
	}
	_, err := decodeNonce(nonce)
	return err
}

func decodeField(field, value string) ([]byte, error) {
	b, err := crypto.FromBase64(value)
	if err != nil {
		return nil, &cryptoerrors.EnvelopeFormatError{Field: field, Reason: "invalid base64", Err: err}
	}
	return b, nil
}

func decodeNonce(value string) ([]byte, error) {
	b, err := decodeField("nonce", value)
	if err != nil {
		return nil, err
	}
	if len(b) != NonceSize {
		return nil, &cryptoerrors.EnvelopeFormatError{
			Field:  "nonce",
			Reason: fmt.Sprintf("length %d, want %d", len(b), NonceSize),
		}
	}
	return b, nil
}

func isExpiredAt(expiry *time.Time, now time.Time) bool {
	return expiry != nil && now.After(*expiry)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
