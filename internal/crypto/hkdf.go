package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives a key using HKDF-SHA-512.
//
// Parameters:
//   - secret: the input key material (e.g., shared secret from KEM)
//   - salt: optional salt value; if empty, a zero-filled salt is used
//   - info: context/application-specific info for domain separation
//   - length: desired output key length in bytes
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	if len(salt) == 0 {
		salt = make([]byte, sha512.Size)
	}

	reader := hkdf.New(sha512.New, secret, salt, info)
	key := make([]byte, length)

	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return key, nil
}

// deriveSessionKey turns a KEM secret into an AEAD key. The salt is the
// SHA-256 of the KEM ciphertext so every encapsulation yields a distinct key.
func deriveSessionKey(secret, kemCiphertext []byte, context string) ([]byte, error) {
	salt := sha256.Sum256(kemCiphertext)
	return DeriveKey(secret, salt[:], []byte(context), SessionKeySize)
}
