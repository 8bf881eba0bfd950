package nanomessenger

import (
	"github.com/nanomessenger/client-go/internal/crypto"
	"github.com/nanomessenger/client-go/mode"
)

// Signer signs payloads. Every KeyPair is a Signer.
type Signer = crypto.Signer

// KeyPair is a secret key bundle of one crypto mode.
type KeyPair = crypto.KeyPair

// PublicKeys is the public half of a KeyPair.
type PublicKeys = crypto.PublicKeys

// VerifyingKey is a public key recovered from its prefixed string form.
type VerifyingKey = crypto.VerifyingKey

// GenerateKeyPair creates a fresh key pair for mode m.
func GenerateKeyPair(m mode.Mode) (KeyPair, error) {
	return crypto.GenerateKeyPair(m)
}

// ParsePublicKeyString parses a "pubkey:", "hybrid-pubkey:" or "pq-pubkey:"
// string. The prefix selects the mode.
func ParsePublicKeyString(s string) (VerifyingKey, error) {
	return crypto.ParsePublicKeyString(s)
}

// ParsePublicKeys decodes the JSON produced by marshaling a PublicKeys value.
func ParsePublicKeys(data []byte) (PublicKeys, error) {
	return crypto.UnmarshalPublicKeys(data)
}

// Fingerprint returns a short BLAKE3 fingerprint of a public key string.
func Fingerprint(publicKeyString string) string {
	return crypto.Fingerprint(publicKeyString)
}
