package crypto

import (
	"errors"
	"fmt"
)

// KEMEncryption is public-key encryption built from a KEM, HKDF-SHA-512 and
// an AEAD. The wire layout is kem ciphertext || AEAD output, and the KEM
// ciphertext is also bound as associated data.
type KEMEncryption struct {
	KEM     KEM
	AEAD    SymmetricEncryption
	Context string
}

// ClassicalEncryption encrypts to an X25519 public key.
func ClassicalEncryption() KEMEncryption {
	return KEMEncryption{KEM: DHKEM{}, AEAD: ChaCha20Poly1305{}, Context: HKDFContextClassical}
}

// QuantumEncryption encrypts to an ML-KEM-768 public key.
func QuantumEncryption() KEMEncryption {
	return KEMEncryption{KEM: MLKEM768{}, AEAD: ChaCha20Poly1305{}, Context: HKDFContextQuantum}
}

// HybridEncryption encrypts to a packed X25519 + ML-KEM-768 public key.
func HybridEncryption() KEMEncryption {
	return KEMEncryption{KEM: HybridKEM{}, AEAD: ChaCha20Poly1305{}, Context: HKDFContextHybrid}
}

// Encrypt encrypts plaintext to recipientPub.
func (e KEMEncryption) Encrypt(recipientPub, plaintext []byte) ([]byte, error) {
	secret, kemCT, err := e.KEM.Encapsulate(recipientPub)
	if err != nil {
		return nil, err
	}
	key, err := deriveSessionKey(secret, kemCT, e.Context)
	if err != nil {
		return nil, err
	}
	sealed, err := e.AEAD.Encrypt(key, plaintext, kemCT)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	out := make([]byte, 0, len(kemCT)+len(sealed))
	out = append(out, kemCT...)
	return append(out, sealed...), nil
}

// Decrypt reverses Encrypt. Any tampering yields ErrAuthenticationFailed.
func (e KEMEncryption) Decrypt(priv, ciphertext []byte) ([]byte, error) {
	split := e.KEM.CiphertextSize()
	if len(ciphertext) < split {
		return nil, ErrAuthenticationFailed
	}
	kemCT, sealed := ciphertext[:split], ciphertext[split:]

	secret, err := e.KEM.Decapsulate(priv, kemCT)
	if err != nil {
		if errors.Is(err, ErrKeyFormat) {
			return nil, err
		}
		return nil, ErrAuthenticationFailed
	}
	key, err := deriveSessionKey(secret, kemCT, e.Context)
	if err != nil {
		return nil, err
	}
	return e.AEAD.Decrypt(key, sealed, kemCT)
}
