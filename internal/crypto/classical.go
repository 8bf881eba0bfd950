package crypto

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"

	"github.com/nanomessenger/client-go/internal/cryptoerrors"
)

// X25519 is the classical key exchange.
type X25519 struct{}

// Name returns the algorithm name.
func (X25519) Name() string { return AlgX25519 }

// GenerateKey creates a new X25519 keypair.
func (x X25519) GenerateKey() (priv, pub []byte, err error) {
	priv = make([]byte, X25519KeySize)
	if _, err := io.ReadFull(random(), priv); err != nil {
		return nil, nil, fmt.Errorf("generate %s key: %w", AlgX25519, err)
	}
	pub, err = x.PublicKey(priv)
	if err != nil {
		return nil, nil, err
	}
	return priv, pub, nil
}

// PublicKey derives the public key from a private scalar.
func (X25519) PublicKey(priv []byte) ([]byte, error) {
	if len(priv) != X25519KeySize {
		return nil, cryptoerrors.NewKeyFormatError(cryptoerrors.KeySecret, AlgX25519,
			"size %d, want %d", len(priv), X25519KeySize)
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive %s public key: %w", AlgX25519, ErrWeakSharedSecret)
	}
	return pub, nil
}

// Exchange computes the shared secret with a peer. Low-order peer points
// are rejected with ErrWeakSharedSecret.
func (x X25519) Exchange(priv, peerPub []byte) ([]byte, error) {
	if len(priv) != X25519KeySize {
		return nil, cryptoerrors.NewKeyFormatError(cryptoerrors.KeySecret, AlgX25519,
			"size %d, want %d", len(priv), X25519KeySize)
	}
	if err := x.CheckPublicKey(peerPub); err != nil {
		return nil, err
	}
	shared, err := curve25519.X25519(priv, peerPub)
	if err != nil {
		return nil, ErrWeakSharedSecret
	}
	return shared, nil
}

// CheckPublicKey validates the length of an X25519 public key.
func (X25519) CheckPublicKey(pub []byte) error {
	if len(pub) != X25519KeySize {
		return cryptoerrors.NewKeyFormatError(cryptoerrors.KeyPublic, AlgX25519,
			"size %d, want %d", len(pub), X25519KeySize)
	}
	return nil
}

// DHKEM lifts X25519 into a KEM with a fresh ephemeral key per
// encapsulation. The ciphertext is the ephemeral public key.
type DHKEM struct {
	X25519 X25519
}

// Name returns the algorithm name.
func (DHKEM) Name() string { return AlgX25519 }

// GenerateKey creates a new recipient keypair.
func (k DHKEM) GenerateKey() (priv, pub []byte, err error) { return k.X25519.GenerateKey() }

// PublicKey derives the public key from a private scalar.
func (k DHKEM) PublicKey(priv []byte) ([]byte, error) { return k.X25519.PublicKey(priv) }

// CheckPublicKey validates the length of a recipient public key.
func (k DHKEM) CheckPublicKey(pub []byte) error { return k.X25519.CheckPublicKey(pub) }

// CiphertextSize returns the size of the ephemeral public key.
func (DHKEM) CiphertextSize() int { return X25519KeySize }

// Encapsulate performs an ephemeral-static exchange with pub.
func (k DHKEM) Encapsulate(pub []byte) (secret, ciphertext []byte, err error) {
	if err := k.CheckPublicKey(pub); err != nil {
		return nil, nil, err
	}
	ephPriv, ephPub, err := k.X25519.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	secret, err = k.X25519.Exchange(ephPriv, pub)
	if err != nil {
		return nil, nil, err
	}
	return secret, ephPub, nil
}

// Decapsulate recovers the secret from the ephemeral public key.
func (k DHKEM) Decapsulate(priv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) != X25519KeySize {
		return nil, ErrAuthenticationFailed
	}
	secret, err := k.X25519.Exchange(priv, ciphertext)
	if err != nil {
		if errors.Is(err, ErrKeyFormat) {
			return nil, err
		}
		return nil, ErrAuthenticationFailed
	}
	return secret, nil
}

// Ed25519 is the classical signature scheme. Private keys are 32-byte seeds.
type Ed25519 struct{}

// Name returns the algorithm name.
func (Ed25519) Name() string { return AlgEd25519 }

// GenerateKey creates a new Ed25519 keypair.
func (Ed25519) GenerateKey() (priv, pub []byte, err error) {
	pk, sk, err := ed25519.GenerateKey(random())
	if err != nil {
		return nil, nil, fmt.Errorf("generate %s key: %w", AlgEd25519, err)
	}
	return sk.Seed(), []byte(pk), nil
}

// PublicKey derives the verifying key from a seed.
func (Ed25519) PublicKey(priv []byte) ([]byte, error) {
	sk, err := ed25519Key(priv)
	if err != nil {
		return nil, err
	}
	return []byte(sk.Public().(ed25519.PublicKey)), nil
}

// Sign signs msg.
func (Ed25519) Sign(priv, msg []byte) ([]byte, error) {
	sk, err := ed25519Key(priv)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(sk, msg), nil
}

// Verify checks sig over msg.
func (e Ed25519) Verify(pub, msg, sig []byte) error {
	if err := e.CheckPublicKey(pub); err != nil {
		return err
	}
	if len(sig) != Ed25519SignatureSize || !ed25519.Verify(ed25519.PublicKey(pub), msg, sig) {
		return ErrSignatureInvalid
	}
	return nil
}

// CheckPublicKey validates the length of an Ed25519 verifying key.
func (Ed25519) CheckPublicKey(pub []byte) error {
	if len(pub) != Ed25519PublicKeySize {
		return cryptoerrors.NewKeyFormatError(cryptoerrors.KeyPublic, AlgEd25519,
			"size %d, want %d", len(pub), Ed25519PublicKeySize)
	}
	return nil
}

func ed25519Key(seed []byte) (ed25519.PrivateKey, error) {
	if len(seed) != Ed25519SeedSize {
		return nil, cryptoerrors.NewKeyFormatError(cryptoerrors.KeySecret, AlgEd25519,
			"size %d, want %d", len(seed), Ed25519SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// ChaCha20Poly1305 is the symmetric AEAD. Ciphertexts are laid out as
// nonce (12) || ciphertext || tag (16).
type ChaCha20Poly1305 struct{}

// Name returns the algorithm name.
func (ChaCha20Poly1305) Name() string { return AlgChaCha20Poly1305 }

// KeySize returns the key size in bytes.
func (ChaCha20Poly1305) KeySize() int { return ChaChaKeySize }

// Encrypt seals plaintext under a fresh random nonce.
func (ChaCha20Poly1305) Encrypt(key, plaintext, aad []byte) ([]byte, error) {
	if len(key) != ChaChaKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), ChaChaKeySize)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	out := make([]byte, ChaChaNonceSize, ChaChaNonceSize+len(plaintext)+ChaChaTagSize)
	if _, err := io.ReadFull(random(), out); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(out, out[:ChaChaNonceSize], plaintext, aad), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func (ChaCha20Poly1305) Decrypt(key, ciphertext, aad []byte) ([]byte, error) {
	if len(key) != ChaChaKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), ChaChaKeySize)
	}
	if len(ciphertext) < ChaChaNonceSize+ChaChaTagSize {
		return nil, ErrAuthenticationFailed
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	nonce, sealed := ciphertext[:ChaChaNonceSize], ciphertext[ChaChaNonceSize:]
	plaintext, err := aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
