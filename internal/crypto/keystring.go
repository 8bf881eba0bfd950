package crypto

import (
	"strings"

	"github.com/nanomessenger/client-go/internal/cryptoerrors"
	"github.com/nanomessenger/client-go/mode"
)

// VerifyingKey is a signature verification key recovered from a public key
// string. Its mode comes from the string prefix alone.
type VerifyingKey struct {
	mode mode.Mode
	key  []byte
}

// ParsePublicKeyString parses "pubkey:", "hybrid-pubkey:" or "pq-pubkey:"
// strings. Unknown prefixes, bad base64 and wrong key sizes fail with a
// *cryptoerrors.KeyFormatError.
func ParsePublicKeyString(s string) (VerifyingKey, error) {
	var (
		m      mode.Mode
		scheme DigitalSignature
		rest   string
	)
	// The hybrid and pq prefixes must be tried before the bare one.
	switch {
	case strings.HasPrefix(s, PrefixHybrid):
		m, scheme, rest = mode.Hybrid, HybridSignature{}, s[len(PrefixHybrid):]
	case strings.HasPrefix(s, PrefixQuantum):
		m, scheme, rest = mode.Quantum, MLDSA65{}, s[len(PrefixQuantum):]
	case strings.HasPrefix(s, PrefixClassical):
		m, scheme, rest = mode.Classical, Ed25519{}, s[len(PrefixClassical):]
	default:
		return VerifyingKey{}, &cryptoerrors.KeyFormatError{
			Kind:   cryptoerrors.KeyPublic,
			Reason: "unknown public key prefix",
		}
	}

	key, err := FromBase64(rest)
	if err != nil {
		return VerifyingKey{}, &cryptoerrors.KeyFormatError{
			Kind:      cryptoerrors.KeyPublic,
			Algorithm: scheme.Name(),
			Reason:    "invalid base64",
		}
	}
	if err := scheme.CheckPublicKey(key); err != nil {
		return VerifyingKey{}, err
	}
	return VerifyingKey{mode: m, key: key}, nil
}

// Mode returns the mode implied by the key's prefix.
func (v VerifyingKey) Mode() mode.Mode { return v.mode }

// String re-encodes the key in its prefixed form.
func (v VerifyingKey) String() string {
	switch v.mode {
	case mode.Classical:
		return PrefixClassical + ToBase64(v.key)
	case mode.Hybrid:
		return PrefixHybrid + ToBase64(v.key)
	case mode.Quantum:
		return PrefixQuantum + ToBase64(v.key)
	default:
		return ""
	}
}

// Verify checks sig over msg with the scheme selected by the key's mode.
func (v VerifyingKey) Verify(msg, sig []byte) error {
	switch v.mode {
	case mode.Classical:
		return Ed25519{}.Verify(v.key, msg, sig)
	case mode.Hybrid:
		return HybridSignature{}.Verify(v.key, msg, sig)
	case mode.Quantum:
		return MLDSA65{}.Verify(v.key, msg, sig)
	default:
		return ErrSignatureInvalid
	}
}

// Fingerprint returns a short BLAKE3 identifier of the key string.
func (v VerifyingKey) Fingerprint() string { return Fingerprint(v.String()) }
