package nanomessenger

import (
	"fmt"
	"time"

	"github.com/nanomessenger/client-go/internal/crypto"
	"github.com/nanomessenger/client-go/mode"
)

// IdentityExportVersion is the current identity export format version.
const IdentityExportVersion = 1

// ExportedIdentity contains everything needed to restore a key pair.
// WARNING: SecretKey is private key material - handle securely.
type ExportedIdentity struct {
	// Version is the export format version. MUST be 1.
	Version int `json:"version"`
	// Mode is the crypto mode of the key pair.
	Mode mode.Mode `json:"mode"`
	// PublicKey is the prefixed public key string.
	PublicKey string `json:"public_key"`
	// SecretKey is the serialized key pair (base64url, no padding).
	SecretKey string `json:"secret_key"`
	// ExportedAt is the export timestamp. Informational only.
	ExportedAt time.Time `json:"exported_at"`
}

// Validate checks the export without reconstructing the key pair.
func (e *ExportedIdentity) Validate() error {
	if e.Version != IdentityExportVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidImportData, e.Version, IdentityExportVersion)
	}
	if !e.Mode.IsValid() {
		return fmt.Errorf("%w: unknown mode %s", ErrInvalidImportData, e.Mode)
	}

	vk, err := crypto.ParsePublicKeyString(e.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: public_key: %w", ErrInvalidImportData, err)
	}
	if vk.Mode() != e.Mode {
		return fmt.Errorf("%w: public_key is %s but mode is %s", ErrInvalidImportData, vk.Mode(), e.Mode)
	}

	if e.SecretKey == "" {
		return fmt.Errorf("%w: secret_key is required", ErrInvalidImportData)
	}
	if _, err := crypto.FromBase64URL(e.SecretKey); err != nil {
		return fmt.Errorf("%w: invalid secret_key encoding", ErrInvalidImportData)
	}
	return nil
}

// ExportIdentity serializes kp for backup or transfer.
func ExportIdentity(kp KeyPair) (*ExportedIdentity, error) {
	secret, err := crypto.MarshalKeyPair(kp)
	if err != nil {
		return nil, fmt.Errorf("export identity: %w", err)
	}
	return &ExportedIdentity{
		Version:    IdentityExportVersion,
		Mode:       kp.Mode(),
		PublicKey:  kp.PublicKeyString(),
		SecretKey:  crypto.ToBase64URL(secret),
		ExportedAt: time.Now().UTC(),
	}, nil
}

// ImportIdentity validates e and rebuilds the key pair. The public key
// derived from the secret key must equal the exported public key.
func ImportIdentity(e *ExportedIdentity) (KeyPair, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	// Validate already checked the encoding.
	secret, _ := crypto.FromBase64URL(e.SecretKey)
	kp, err := crypto.UnmarshalKeyPair(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: secret_key: %w", ErrInvalidImportData, err)
	}
	if kp.Mode() != e.Mode {
		return nil, fmt.Errorf("%w: secret_key is %s but mode is %s", ErrInvalidImportData, kp.Mode(), e.Mode)
	}
	if kp.PublicKeyString() != e.PublicKey {
		return nil, fmt.Errorf("%w: public_key does not match secret_key", ErrInvalidImportData)
	}
	return kp, nil
}
