package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanomessenger/client-go/internal/crypto"
	"github.com/nanomessenger/client-go/internal/cryptoerrors"
	"github.com/nanomessenger/client-go/mode"
)

func mustKeyPair(t *testing.T, m mode.Mode) crypto.KeyPair {
	t.Helper()
	kp, err := crypto.GenerateKeyPair(m)
	require.NoError(t, err)
	return kp
}

func signedPayload(t *testing.T, kp crypto.KeyPair, body string, counter uint64) *MessagePayload {
	t.Helper()
	p := NewPayload(kp.PublicKeyString(), []byte(body), counter)
	require.NoError(t, p.Sign(kp))
	return p
}

func TestSign_HelloScenario(t *testing.T) {
	t.Parallel()

	alice := mustKeyPair(t, mode.Classical)
	p := signedPayload(t, alice, "hello", 1)

	assert.Equal(t, mode.Classical, p.CryptoMode)
	require.NoError(t, p.VerifySignature())

	p.Body = []byte("hellO")
	assert.ErrorIs(t, p.VerifySignature(), cryptoerrors.ErrSignatureInvalid)

	p.Body = []byte("hello")
	assert.NoError(t, p.VerifySignature())
}

func TestSign_AllModes(t *testing.T) {
	t.Parallel()

	for _, m := range mode.AllModes() {
		t.Run(m.String(), func(t *testing.T) {
			kp := mustKeyPair(t, m)
			p := signedPayload(t, kp, "body", 7)
			assert.Equal(t, m, p.CryptoMode)
			assert.Equal(t, m, p.SignerMode())
			assert.NoError(t, p.VerifySignature())
		})
	}
}

func TestVerifySignature_TamperEachField(t *testing.T) {
	t.Parallel()

	alice := mustKeyPair(t, mode.Hybrid)
	mallory := mustKeyPair(t, mode.Hybrid)
	room := "general"

	tests := []struct {
		name    string
		mutate  func(p *MessagePayload)
		restore func(p *MessagePayload)
	}{
		{
			name:    "body",
			mutate:  func(p *MessagePayload) { p.Body = []byte("bye") },
			restore: func(p *MessagePayload) { p.Body = []byte("hi") },
		},
		{
			name:    "counter",
			mutate:  func(p *MessagePayload) { p.Counter++ },
			restore: func(p *MessagePayload) { p.Counter-- },
		},
		{
			name:    "timestamp",
			mutate:  func(p *MessagePayload) { p.Timestamp++ },
			restore: func(p *MessagePayload) { p.Timestamp-- },
		},
		{
			name:    "crypto_mode",
			mutate:  func(p *MessagePayload) { p.CryptoMode = mode.Classical },
			restore: func(p *MessagePayload) { p.CryptoMode = mode.Hybrid },
		},
		{
			name:    "from_pubkey",
			mutate:  func(p *MessagePayload) { p.FromPubkey = mallory.PublicKeyString() },
			restore: func(p *MessagePayload) { p.FromPubkey = alice.PublicKeyString() },
		},
		{
			name:    "room",
			mutate:  func(p *MessagePayload) { p.Room = &room },
			restore: func(p *MessagePayload) { p.Room = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := signedPayload(t, alice, "hi", 3)
			require.NoError(t, p.VerifySignature())

			tt.mutate(p)
			assert.ErrorIs(t, p.VerifySignature(), cryptoerrors.ErrSignatureInvalid)

			tt.restore(p)
			assert.NoError(t, p.VerifySignature())
		})
	}
}

func TestVerifySignature_DowngradeRewrite(t *testing.T) {
	t.Parallel()

	kp := mustKeyPair(t, mode.Quantum)
	p := signedPayload(t, kp, "secret plans", 1)

	for _, m := range []mode.Mode{mode.Classical, mode.Hybrid, 0} {
		p.CryptoMode = m
		assert.ErrorIsf(t, p.VerifySignature(), cryptoerrors.ErrSignatureInvalid, "mode rewritten to %s", m)
	}
}

func TestVerifySignature_Garbage(t *testing.T) {
	t.Parallel()

	kp := mustKeyPair(t, mode.Classical)
	p := signedPayload(t, kp, "x", 1)

	unsigned := *p
	unsigned.Sig = nil
	assert.ErrorIs(t, unsigned.VerifySignature(), cryptoerrors.ErrSignatureInvalid)

	badKey := *p
	badKey.FromPubkey = "pubkey:not-base64!"
	assert.ErrorIs(t, badKey.VerifySignature(), cryptoerrors.ErrSignatureInvalid)
	assert.Equal(t, mode.Mode(0), badKey.SignerMode())
}

func TestSign_Rejections(t *testing.T) {
	t.Parallel()

	alice := mustKeyPair(t, mode.Classical)
	bob := mustKeyPair(t, mode.Classical)

	p := NewPayload(bob.PublicKeyString(), []byte("x"), 1)
	assert.ErrorIs(t, p.Sign(alice), ErrSignerMismatch)

	p = NewPayload("", []byte("x"), 1)
	p.CryptoMode = mode.Hybrid
	err := p.Sign(alice)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cryptoerrors.ErrModePolicyViolation))

	p = NewPayload("", []byte("x"), 1)
	require.NoError(t, p.Sign(alice))
	assert.Equal(t, alice.PublicKeyString(), p.FromPubkey)
}

func TestPayloadJSONRoundTrip(t *testing.T) {
	t.Parallel()

	kp := mustKeyPair(t, mode.Hybrid)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewPayload(kp.PublicKeyString(), []byte("round trip"), 42, WithRoom("ops"), WithTimestamp(ts))
	require.NoError(t, p.Sign(kp))

	data, err := p.Marshal()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Hybrid", raw["crypto_mode"])
	assert.Equal(t, "ops", raw["room"])

	back, err := ParsePayload(data)
	require.NoError(t, err)
	assert.Equal(t, p, back)
	assert.NoError(t, back.VerifySignature())
	assert.Equal(t, uint64(ts.Unix()), back.Timestamp)
}

func TestPayloadJSON_UnsetModeOmitted(t *testing.T) {
	t.Parallel()

	p := NewPayload("pubkey:AAAA", []byte("legacy"), 1)
	data, err := p.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "crypto_mode")

	_, err = ParsePayload([]byte(`{"body": 5}`))
	assert.ErrorIs(t, err, cryptoerrors.ErrEnvelopeFormat)
}
