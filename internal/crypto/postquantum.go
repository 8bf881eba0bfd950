package crypto

import (
	"fmt"
	"io"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"

	"github.com/nanomessenger/client-go/internal/cryptoerrors"
)

var mlkemScheme = mlkem768.Scheme()

// MLKEM768 is the post-quantum KEM (FIPS 203).
type MLKEM768 struct{}

// Name returns the algorithm name.
func (MLKEM768) Name() string { return AlgMLKEM768 }

// CiphertextSize returns the encapsulation size in bytes.
func (MLKEM768) CiphertextSize() int { return MLKEMCiphertextSize }

// GenerateKey creates a new ML-KEM-768 keypair.
func (MLKEM768) GenerateKey() (priv, pub []byte, err error) {
	seed := make([]byte, mlkemScheme.SeedSize())
	if _, err := io.ReadFull(random(), seed); err != nil {
		return nil, nil, fmt.Errorf("generate %s key: %w", AlgMLKEM768, err)
	}
	pk, sk := mlkemScheme.DeriveKeyPair(seed)

	// MarshalBinary never fails for valid keys from DeriveKeyPair
	pub, _ = pk.MarshalBinary()
	priv, _ = sk.MarshalBinary()
	return priv, pub, nil
}

// PublicKey extracts the encapsulation key from a decapsulation key.
func (MLKEM768) PublicKey(priv []byte) ([]byte, error) {
	sk, err := unpackMLKEMPrivate(priv)
	if err != nil {
		return nil, err
	}
	return sk.Public().MarshalBinary()
}

// CheckPublicKey validates an ML-KEM-768 encapsulation key.
func (MLKEM768) CheckPublicKey(pub []byte) error {
	if len(pub) != MLKEMPublicKeySize {
		return cryptoerrors.NewKeyFormatError(cryptoerrors.KeyPublic, AlgMLKEM768,
			"size %d, want %d", len(pub), MLKEMPublicKeySize)
	}
	if _, err := mlkemScheme.UnmarshalBinaryPublicKey(pub); err != nil {
		return cryptoerrors.NewKeyFormatError(cryptoerrors.KeyPublic, AlgMLKEM768, "malformed key")
	}
	return nil
}

// Encapsulate derives a fresh secret for pub.
func (MLKEM768) Encapsulate(pub []byte) (secret, ciphertext []byte, err error) {
	if len(pub) != MLKEMPublicKeySize {
		return nil, nil, cryptoerrors.NewKeyFormatError(cryptoerrors.KeyPublic, AlgMLKEM768,
			"size %d, want %d", len(pub), MLKEMPublicKeySize)
	}
	pk, err := mlkemScheme.UnmarshalBinaryPublicKey(pub)
	if err != nil {
		return nil, nil, cryptoerrors.NewKeyFormatError(cryptoerrors.KeyPublic, AlgMLKEM768, "malformed key")
	}

	seed := make([]byte, mlkemScheme.EncapsulationSeedSize())
	if _, err := io.ReadFull(random(), seed); err != nil {
		return nil, nil, fmt.Errorf("encapsulate: %w", err)
	}
	ciphertext, secret, err = mlkemScheme.EncapsulateDeterministically(pk, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("encapsulate: %w", err)
	}
	return secret, ciphertext, nil
}

// Decapsulate recovers the secret. ML-KEM rejects implicitly, so a tampered
// ciphertext yields an unrelated secret and fails later at the AEAD.
func (MLKEM768) Decapsulate(priv, ciphertext []byte) ([]byte, error) {
	sk, err := unpackMLKEMPrivate(priv)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) != MLKEMCiphertextSize {
		return nil, ErrAuthenticationFailed
	}
	secret, err := mlkemScheme.Decapsulate(sk, ciphertext)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return secret, nil
}

func unpackMLKEMPrivate(priv []byte) (*mlkem768.PrivateKey, error) {
	if len(priv) != MLKEMSecretKeySize {
		return nil, cryptoerrors.NewKeyFormatError(cryptoerrors.KeySecret, AlgMLKEM768,
			"size %d, want %d", len(priv), MLKEMSecretKeySize)
	}
	var sk mlkem768.PrivateKey
	if err := sk.Unpack(priv); err != nil {
		return nil, cryptoerrors.NewKeyFormatError(cryptoerrors.KeySecret, AlgMLKEM768, "malformed key")
	}
	return &sk, nil
}

// MLDSA65 is the post-quantum signature scheme (FIPS 204).
type MLDSA65 struct{}

// Name returns the algorithm name.
func (MLDSA65) Name() string { return AlgMLDSA65 }

// GenerateKey creates a new ML-DSA-65 keypair.
func (MLDSA65) GenerateKey() (priv, pub []byte, err error) {
	pk, sk, err := mldsa65.GenerateKey(random())
	if err != nil {
		return nil, nil, fmt.Errorf("generate %s key: %w", AlgMLDSA65, err)
	}

	// MarshalBinary never fails for valid keys from GenerateKey
	pub, _ = pk.MarshalBinary()
	priv, _ = sk.MarshalBinary()
	return priv, pub, nil
}

// PublicKey derives the verifying key from a signing key.
func (MLDSA65) PublicKey(priv []byte) ([]byte, error) {
	sk, err := unpackMLDSAPrivate(priv)
	if err != nil {
		return nil, err
	}
	pk, ok := sk.Public().(*mldsa65.PublicKey)
	if !ok {
		return nil, cryptoerrors.NewKeyFormatError(cryptoerrors.KeySecret, AlgMLDSA65, "cannot derive public key")
	}
	return pk.MarshalBinary()
}

// Sign produces a deterministic ML-DSA-65 signature over msg.
func (MLDSA65) Sign(priv, msg []byte) ([]byte, error) {
	sk, err := unpackMLDSAPrivate(priv)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, MLDSASignatureSize)
	if err := mldsa65.SignTo(sk, msg, nil, false, sig); err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return sig, nil
}

// Verify checks sig over msg.
func (MLDSA65) Verify(pub, msg, sig []byte) error {
	pk, err := unpackMLDSAPublic(pub)
	if err != nil {
		return err
	}
	if len(sig) != MLDSASignatureSize || !mldsa65.Verify(pk, msg, nil, sig) {
		return ErrSignatureInvalid
	}
	return nil
}

// CheckPublicKey validates an ML-DSA-65 verifying key.
func (MLDSA65) CheckPublicKey(pub []byte) error {
	_, err := unpackMLDSAPublic(pub)
	return err
}

func unpackMLDSAPublic(pub []byte) (*mldsa65.PublicKey, error) {
	if len(pub) != MLDSAPublicKeySize {
		return nil, cryptoerrors.NewKeyFormatError(cryptoerrors.KeyPublic, AlgMLDSA65,
			"size %d, want %d", len(pub), MLDSAPublicKeySize)
	}
	pk := &mldsa65.PublicKey{}
	if err := pk.UnmarshalBinary(pub); err != nil {
		return nil, cryptoerrors.NewKeyFormatError(cryptoerrors.KeyPublic, AlgMLDSA65, "malformed key")
	}
	return pk, nil
}

func unpackMLDSAPrivate(priv []byte) (*mldsa65.PrivateKey, error) {
	if len(priv) != MLDSASecretKeySize {
		return nil, cryptoerrors.NewKeyFormatError(cryptoerrors.KeySecret, AlgMLDSA65,
			"size %d, want %d", len(priv), MLDSASecretKeySize)
	}
	sk := &mldsa65.PrivateKey{}
	if err := sk.UnmarshalBinary(priv); err != nil {
		return nil, cryptoerrors.NewKeyFormatError(cryptoerrors.KeySecret, AlgMLDSA65, "malformed key")
	}
	return sk, nil
}
