package crypto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nanomessenger/client-go/mode"
)

func generateAll(t *testing.T) map[mode.Mode]KeyPair {
	t.Helper()
	out := make(map[mode.Mode]KeyPair)
	for _, m := range mode.AllModes() {
		kp, err := GenerateKeyPair(m)
		if err != nil {
			t.Fatalf("GenerateKeyPair(%s) error = %v", m, err)
		}
		out[m] = kp
	}
	return out
}

func TestGenerateKeyPair_Modes(t *testing.T) {
	prefixes := map[mode.Mode]string{
		mode.Classical: PrefixClassical,
		mode.Hybrid:    PrefixHybrid,
		mode.Quantum:   PrefixQuantum,
	}
	for m, kp := range generateAll(t) {
		if kp.Mode() != m {
			t.Errorf("GenerateKeyPair(%s).Mode() = %s", m, kp.Mode())
		}
		if kp.PublicKeys().Mode() != m {
			t.Errorf("PublicKeys().Mode() = %s, want %s", kp.PublicKeys().Mode(), m)
		}
		if !strings.HasPrefix(kp.PublicKeyString(), prefixes[m]) {
			t.Errorf("PublicKeyString() = %q, want prefix %q", kp.PublicKeyString()[:20], prefixes[m])
		}
		if kp.PublicKeyString() != kp.PublicKeys().PublicKeyString() {
			t.Error("keypair and public keys disagree on the public key string")
		}
	}

	if _, err := GenerateKeyPair(mode.Mode(0)); !errors.Is(err, mode.ErrUnknownMode) {
		t.Errorf("GenerateKeyPair(0) error = %v, want ErrUnknownMode", err)
	}
}

func TestKeyPair_SignVerify(t *testing.T) {
	for m, kp := range generateAll(t) {
		t.Run(m.String(), func(t *testing.T) {
			msg := []byte("hello")
			sig, err := kp.Sign(msg)
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}
			if err := kp.PublicKeys().Verify(msg, sig); err != nil {
				t.Errorf("Verify() error = %v", err)
			}
			if err := kp.PublicKeys().Verify([]byte("hellO"), sig); !errors.Is(err, ErrSignatureInvalid) {
				t.Errorf("Verify(hellO) error = %v, want ErrSignatureInvalid", err)
			}

			vk, err := ParsePublicKeyString(kp.PublicKeyString())
			if err != nil {
				t.Fatalf("ParsePublicKeyString() error = %v", err)
			}
			if vk.Mode() != m {
				t.Errorf("VerifyingKey.Mode() = %s, want %s", vk.Mode(), m)
			}
			if err := vk.Verify(msg, sig); err != nil {
				t.Errorf("VerifyingKey.Verify() error = %v", err)
			}
			if vk.String() != kp.PublicKeyString() {
				t.Error("VerifyingKey.String() does not round trip")
			}
			if vk.Fingerprint() != kp.PublicKeys().Fingerprint() {
				t.Error("fingerprints disagree")
			}
		})
	}
}

func TestKeyPair_CrossModeSignatureRejected(t *testing.T) {
	keys := generateAll(t)
	msg := []byte("hello")
	for signerMode, signer := range keys {
		sig, err := signer.Sign(msg)
		if err != nil {
			t.Fatalf("Sign() error = %v", err)
		}
		for verifierMode, verifier := range keys {
			if signerMode == verifierMode {
				continue
			}
			if err := verifier.PublicKeys().Verify(msg, sig); err == nil {
				t.Errorf("%s signature verified under %s key", signerMode, verifierMode)
			}
		}
	}
}

func TestEncryptionMatrix(t *testing.T) {
	keys := generateAll(t)
	allowed := map[mode.Mode]map[mode.Mode]bool{
		// recipient keys -> encryption mode
		mode.Classical: {mode.Classical: true},
		mode.Hybrid:    {mode.Classical: true, mode.Hybrid: true, mode.Quantum: true},
		mode.Quantum:   {mode.Quantum: true},
	}

	plaintext := []byte("attack at dawn")
	for recipientMode, recipient := range keys {
		for _, m := range mode.AllModes() {
			ct, err := recipient.PublicKeys().Encrypt(m, plaintext)
			if !allowed[recipientMode][m] {
				if !errors.Is(err, ErrModePolicyViolation) {
					t.Errorf("Encrypt(%s) to %s keys error = %v, want ErrModePolicyViolation", m, recipientMode, err)
				}
				if _, err := recipient.Decrypt(m, []byte("whatever")); !errors.Is(err, ErrModePolicyViolation) {
					t.Errorf("Decrypt(%s) with %s keys error = %v, want ErrModePolicyViolation", m, recipientMode, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("Encrypt(%s) to %s keys error = %v", m, recipientMode, err)
			}
			got, err := recipient.Decrypt(m, ct)
			if err != nil {
				t.Fatalf("Decrypt(%s) with %s keys error = %v", m, recipientMode, err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("Decrypt(%s) = %q, want %q", m, got, plaintext)
			}

			tampered := bytes.Clone(ct)
			tampered[len(tampered)-1] ^= 0x01
			if _, err := recipient.Decrypt(m, tampered); !errors.Is(err, ErrAuthenticationFailed) {
				t.Errorf("Decrypt(%s tampered) error = %v, want ErrAuthenticationFailed", m, err)
			}
		}
	}
}

func TestDecrypt_WrongRecipient(t *testing.T) {
	a, err := GenerateHybridKeyPair()
	if err != nil {
		t.Fatalf("GenerateHybridKeyPair() error = %v", err)
	}
	b, err := GenerateHybridKeyPair()
	if err != nil {
		t.Fatalf("GenerateHybridKeyPair() error = %v", err)
	}

	ct, err := a.PublicKeys().Encrypt(mode.Hybrid, []byte("for a only"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if _, err := b.Decrypt(mode.Hybrid, ct); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("Decrypt(wrong recipient) error = %v, want ErrAuthenticationFailed", err)
	}
}

func TestParsePublicKeyString_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"unknown prefix", "rsa-pubkey:AAAA"},
		{"no prefix", "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="},
		{"bad base64", "pubkey:!!!"},
		{"short classical", "pubkey:" + ToBase64(make([]byte, 31))},
		{"short pq", "pq-pubkey:" + ToBase64(make([]byte, 32))},
		{"hybrid without framing", "hybrid-pubkey:" + ToBase64(make([]byte, 32))},
		{"hybrid trailing bytes", "hybrid-pubkey:" + ToBase64(append(packParts(make([]byte, 32), make([]byte, MLDSAPublicKeySize)), 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePublicKeyString(tt.in)
			if !errors.Is(err, ErrKeyFormat) {
				t.Errorf("ParsePublicKeyString() error = %v, want ErrKeyFormat", err)
			}
		})
	}
}

func TestPublicKeysJSON(t *testing.T) {
	for m, kp := range generateAll(t) {
		t.Run(m.String(), func(t *testing.T) {
			data, err := json.Marshal(kp.PublicKeys())
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}
			if !strings.Contains(string(data), `"mode":"`+m.String()+`"`) {
				t.Errorf("JSON %s lacks mode tag", data[:40])
			}

			back, err := UnmarshalPublicKeys(data)
			if err != nil {
				t.Fatalf("UnmarshalPublicKeys() error = %v", err)
			}
			if back.Mode() != m {
				t.Errorf("Mode() = %s, want %s", back.Mode(), m)
			}
			if back.PublicKeyString() != kp.PublicKeyString() {
				t.Error("public key string changed across JSON round trip")
			}
		})
	}

	for _, bad := range []string{`{`, `{"mode":"Classical"}`, `{"mode":"Sideways"}`, `{}`} {
		if _, err := UnmarshalPublicKeys([]byte(bad)); !errors.Is(err, ErrKeyFormat) {
			t.Errorf("UnmarshalPublicKeys(%s) error = %v, want ErrKeyFormat", bad, err)
		}
	}
}

func TestMarshalKeyPair_RoundTrip(t *testing.T) {
	for m, kp := range generateAll(t) {
		t.Run(m.String(), func(t *testing.T) {
			data, err := MarshalKeyPair(kp)
			if err != nil {
				t.Fatalf("MarshalKeyPair() error = %v", err)
			}
			if data[0] != byte(m) {
				t.Errorf("mode byte = %d, want %d", data[0], m)
			}

			back, err := UnmarshalKeyPair(data)
			if err != nil {
				t.Fatalf("UnmarshalKeyPair() error = %v", err)
			}
			if back.Mode() != m {
				t.Errorf("Mode() = %s, want %s", back.Mode(), m)
			}
			if back.PublicKeyString() != kp.PublicKeyString() {
				t.Error("public key string changed across round trip")
			}

			sig, err := back.Sign([]byte("restored"))
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}
			if err := kp.PublicKeys().Verify([]byte("restored"), sig); err != nil {
				t.Errorf("restored key signature did not verify: %v", err)
			}

			for _, n := range []int{0, 1, 5, len(data) - 1} {
				if _, err := UnmarshalKeyPair(data[:n]); !errors.Is(err, ErrKeyFormat) {
					t.Errorf("UnmarshalKeyPair(truncated to %d) error = %v, want ErrKeyFormat", n, err)
				}
			}
		})
	}

	if _, err := UnmarshalKeyPair([]byte{9, 0, 0, 0, 0}); !errors.Is(err, ErrKeyFormat) {
		t.Errorf("UnmarshalKeyPair(unknown mode) error = %v, want ErrKeyFormat", err)
	}
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("pubkey:abc")
	if !strings.HasPrefix(fp, FingerprintPrefix) {
		t.Errorf("Fingerprint() = %q, want prefix %q", fp, FingerprintPrefix)
	}
	if len(fp) != len(FingerprintPrefix)+2*fingerprintBytes {
		t.Errorf("Fingerprint() length = %d", len(fp))
	}
	if fp != Fingerprint("pubkey:abc") {
		t.Error("Fingerprint is not deterministic")
	}
	if fp == Fingerprint("pubkey:abd") {
		t.Error("different keys share a fingerprint")
	}
}
