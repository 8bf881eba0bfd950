package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nanomessenger/client-go/internal/crypto"
	"github.com/nanomessenger/client-go/internal/cryptoerrors"
	"github.com/nanomessenger/client-go/mode"
)

// payloadContext prefixes the signed bytes of every payload.
const payloadContext = "nano-messenger:payload:v2"

// ErrSignerMismatch is returned by Sign when the payload names a different sender.
var ErrSignerMismatch = errors.New("signer does not match from_pubkey")

// MessagePayload is the signed content of a message. It travels encrypted
// inside an envelope.
type MessagePayload struct {
	// FromPubkey is the sender's prefixed public key string.
	FromPubkey string `json:"from_pubkey"`
	// Timestamp is the creation time in unix seconds.
	Timestamp uint64 `json:"timestamp"`
	// Body is the message content.
	Body []byte `json:"body"`
	// Room is set for group messages.
	Room *string `json:"room,omitempty"`
	// Counter is the per-sender sequence number.
	Counter uint64 `json:"counter"`
	// CryptoMode is the mode of the signing key. Sign sets it.
	CryptoMode mode.Mode `json:"crypto_mode,omitzero"`
	// Sig covers every other field, CryptoMode included.
	Sig []byte `json:"sig,omitempty"`
}

// PayloadOption configures NewPayload.
type PayloadOption func(*MessagePayload)

// WithRoom marks the payload as a room message.
func WithRoom(room string) PayloadOption {
	return func(p *MessagePayload) {
		p.Room = &room
	}
}

// WithTimestamp overrides the creation time.
func WithTimestamp(t time.Time) PayloadOption {
	return func(p *MessagePayload) {
		p.Timestamp = uint64(t.Unix())
	}
}

// NewPayload builds an unsigned payload stamped with the current time.
func NewPayload(fromPubkey string, body []byte, counter uint64, opts ...PayloadOption) *MessagePayload {
	p := &MessagePayload{
		FromPubkey: fromPubkey,
		Timestamp:  uint64(time.Now().Unix()),
		Body:       body,
		Counter:    counter,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SignableBytes returns the canonical encoding of every field except Sig:
//
//	context || lp(from_pubkey) || lp(body) || counter (u64 BE) ||
//	timestamp (u64 BE) || room flag (1 byte) [|| lp(room)] || mode (1 byte)
//
// where lp is a u32 big-endian length prefix. An unset mode encodes as 0.
func (p *MessagePayload) SignableBytes() []byte {
	n := len(payloadContext) + 4 + len(p.FromPubkey) + 4 + len(p.Body) + 8 + 8 + 1 + 1
	if p.Room != nil {
		n += 4 + len(*p.Room)
	}

	buf := make([]byte, 0, n)
	buf = append(buf, payloadContext...)
	buf = appendLP(buf, []byte(p.FromPubkey))
	buf = appendLP(buf, p.Body)
	buf = binary.BigEndian.AppendUint64(buf, p.Counter)
	buf = binary.BigEndian.AppendUint64(buf, p.Timestamp)
	if p.Room != nil {
		buf = append(buf, 1)
		buf = appendLP(buf, []byte(*p.Room))
	} else {
		buf = append(buf, 0)
	}
	return append(buf, byte(p.CryptoMode))
}

func appendLP(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// Sign sets CryptoMode to the signer's mode and signs the payload.
// An empty FromPubkey is filled in from the signer. A payload that already
// names another sender, or declares a different mode, is rejected.
func (p *MessagePayload) Sign(signer crypto.Signer) error {
	if p.CryptoMode != 0 && p.CryptoMode != signer.Mode() {
		return &mode.PolicyError{
			Mode:   p.CryptoMode,
			Reason: fmt.Sprintf("payload declares %s but signing key is %s", p.CryptoMode, signer.Mode()),
		}
	}
	switch p.FromPubkey {
	case "":
		p.FromPubkey = signer.PublicKeyString()
	case signer.PublicKeyString():
	default:
		return ErrSignerMismatch
	}

	p.CryptoMode = signer.Mode()
	sig, err := signer.Sign(p.SignableBytes())
	if err != nil {
		return fmt.Errorf("sign payload: %w", err)
	}
	p.Sig = sig
	return nil
}

// VerifySignature re-encodes the payload and checks Sig against the key in
// FromPubkey. The declared CryptoMode must match the key's prefix. Every
// failure is reported as the opaque cryptoerrors.ErrSignatureInvalid.
func (p *MessagePayload) VerifySignature() error {
	if len(p.Sig) == 0 {
		return cryptoerrors.ErrSignatureInvalid
	}
	vk, err := crypto.ParsePublicKeyString(p.FromPubkey)
	if err != nil {
		return cryptoerrors.ErrSignatureInvalid
	}
	if p.CryptoMode != 0 && p.CryptoMode != vk.Mode() {
		return cryptoerrors.ErrSignatureInvalid
	}
	if err := vk.Verify(p.SignableBytes(), p.Sig); err != nil {
		return cryptoerrors.ErrSignatureInvalid
	}
	return nil
}

// SignerMode returns the mode implied by FromPubkey, or 0 if it does not parse.
func (p *MessagePayload) SignerMode() mode.Mode {
	vk, err := crypto.ParsePublicKeyString(p.FromPubkey)
	if err != nil {
		return 0
	}
	return vk.Mode()
}

// Marshal encodes the payload as JSON.
func (p *MessagePayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// ParsePayload decodes a JSON payload. It does not verify the signature.
func ParsePayload(data []byte) (*MessagePayload, error) {
	var p MessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &cryptoerrors.EnvelopeFormatError{Field: "payload", Reason: "invalid JSON", Err: err}
	}
	return &p, nil
}
