package crypto

import (
	"bytes"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/nanomessenger/client-go/internal/cryptoerrors"
)

// HybridKEM encapsulates under a classical and a post-quantum KEM at once.
// The session secret stays safe as long as either component is unbroken.
//
// Keys are length-prefixed pairs: lp(classical) || lp(post-quantum).
// The ciphertext is the plain concatenation of the two fixed-size
// component ciphertexts.
type HybridKEM struct {
	Classical   DHKEM
	PostQuantum MLKEM768
}

// Name returns the algorithm name.
func (HybridKEM) Name() string { return AlgHybridKEM }

// CiphertextSize returns the combined encapsulation size.
func (k HybridKEM) CiphertextSize() int {
	return k.Classical.CiphertextSize() + k.PostQuantum.CiphertextSize()
}

// GenerateKey creates both component keypairs.
func (k HybridKEM) GenerateKey() (priv, pub []byte, err error) {
	cPriv, cPub, err := k.Classical.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	pPriv, pPub, err := k.PostQuantum.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	return packPair(cPriv, pPriv), packPair(cPub, pPub), nil
}

// PublicKey derives the packed public key from a packed private key.
func (k HybridKEM) PublicKey(priv []byte) ([]byte, error) {
	cPriv, pPriv, err := unpackPair(priv, cryptoerrors.KeySecret, AlgHybridKEM)
	if err != nil {
		return nil, err
	}
	cPub, err := k.Classical.PublicKey(cPriv)
	if err != nil {
		return nil, err
	}
	pPub, err := k.PostQuantum.PublicKey(pPriv)
	if err != nil {
		return nil, err
	}
	return packPair(cPub, pPub), nil
}

// CheckPublicKey validates both component public keys.
func (k HybridKEM) CheckPublicKey(pub []byte) error {
	cPub, pPub, err := unpackPair(pub, cryptoerrors.KeyPublic, AlgHybridKEM)
	if err != nil {
		return err
	}
	if err := k.Classical.CheckPublicKey(cPub); err != nil {
		return err
	}
	return k.PostQuantum.CheckPublicKey(pPub)
}

// Encapsulate runs both KEMs and combines their secrets.
func (k HybridKEM) Encapsulate(pub []byte) (secret, ciphertext []byte, err error) {
	cPub, pPub, err := unpackPair(pub, cryptoerrors.KeyPublic, AlgHybridKEM)
	if err != nil {
		return nil, nil, err
	}
	cSecret, cCT, err := k.Classical.Encapsulate(cPub)
	if err != nil {
		return nil, nil, err
	}
	pSecret, pCT, err := k.PostQuantum.Encapsulate(pPub)
	if err != nil {
		return nil, nil, err
	}

	ciphertext = make([]byte, 0, len(cCT)+len(pCT))
	ciphertext = append(ciphertext, cCT...)
	ciphertext = append(ciphertext, pCT...)

	secret, err = CombineSecrets(cSecret, pSecret, ciphertext)
	if err != nil {
		return nil, nil, err
	}
	return secret, ciphertext, nil
}

// Decapsulate recovers both component secrets and combines them.
func (k HybridKEM) Decapsulate(priv, ciphertext []byte) ([]byte, error) {
	cPriv, pPriv, err := unpackPair(priv, cryptoerrors.KeySecret, AlgHybridKEM)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) != k.CiphertextSize() {
		return nil, ErrAuthenticationFailed
	}
	split := k.Classical.CiphertextSize()

	cSecret, err := k.Classical.Decapsulate(cPriv, ciphertext[:split])
	if err != nil {
		return nil, err
	}
	pSecret, err := k.PostQuantum.Decapsulate(pPriv, ciphertext[split:])
	if err != nil {
		return nil, err
	}
	return CombineSecrets(cSecret, pSecret, ciphertext)
}

// CombineSecrets derives one key from a classical and a post-quantum secret
// with HKDF-SHA-512. The secrets must differ. The salt binds the combined
// ciphertext so mixing components from different encapsulations fails.
func CombineSecrets(classical, postQuantum, ciphertext []byte) ([]byte, error) {
	if subtle.ConstantTimeCompare(classical, postQuantum) == 1 {
		return nil, ErrIdenticalSecrets
	}
	ikm := make([]byte, 0, len(classical)+len(postQuantum))
	ikm = append(ikm, classical...)
	ikm = append(ikm, postQuantum...)
	return deriveSessionKey(ikm, ciphertext, HKDFContextHybrid)
}

// HybridSignature signs with Ed25519 and ML-DSA-65 over the same bytes.
// A signature is valid only when both components verify.
type HybridSignature struct {
	Classical   Ed25519
	PostQuantum MLDSA65
}

// Name returns the algorithm name.
func (HybridSignature) Name() string { return AlgHybridSignature }

// GenerateKey creates both component keypairs.
func (s HybridSignature) GenerateKey() (priv, pub []byte, err error) {
	cPriv, cPub, err := s.Classical.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	pPriv, pPub, err := s.PostQuantum.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	return packPair(cPriv, pPriv), packPair(cPub, pPub), nil
}

// PublicKey derives the packed verifying key from a packed signing key.
func (s HybridSignature) PublicKey(priv []byte) ([]byte, error) {
	cPriv, pPriv, err := unpackPair(priv, cryptoerrors.KeySecret, AlgHybridSignature)
	if err != nil {
		return nil, err
	}
	cPub, err := s.Classical.PublicKey(cPriv)
	if err != nil {
		return nil, err
	}
	pPub, err := s.PostQuantum.PublicKey(pPriv)
	if err != nil {
		return nil, err
	}
	return packPair(cPub, pPub), nil
}

// Sign signs msg with both components.
func (s HybridSignature) Sign(priv, msg []byte) ([]byte, error) {
	cPriv, pPriv, err := unpackPair(priv, cryptoerrors.KeySecret, AlgHybridSignature)
	if err != nil {
		return nil, err
	}
	cSig, err := s.Classical.Sign(cPriv, msg)
	if err != nil {
		return nil, err
	}
	pSig, err := s.PostQuantum.Sign(pPriv, msg)
	if err != nil {
		return nil, err
	}
	return packPair(cSig, pSig), nil
}

// Verify checks both component signatures. Both are always evaluated and
// the error does not reveal which one failed.
func (s HybridSignature) Verify(pub, msg, sig []byte) error {
	cPub, pPub, err := unpackPair(pub, cryptoerrors.KeyPublic, AlgHybridSignature)
	if err != nil {
		return err
	}
	if err := s.Classical.CheckPublicKey(cPub); err != nil {
		return err
	}
	if err := s.PostQuantum.CheckPublicKey(pPub); err != nil {
		return err
	}
	cSig, pSig, err := unpackPair(sig, cryptoerrors.KeySignature, AlgHybridSignature)
	if err != nil {
		return ErrSignatureInvalid
	}

	cErr := s.Classical.Verify(cPub, msg, cSig)
	pErr := s.PostQuantum.Verify(pPub, msg, pSig)
	if cErr != nil || pErr != nil {
		return ErrSignatureInvalid
	}
	return nil
}

// CheckPublicKey validates both component verifying keys.
func (s HybridSignature) CheckPublicKey(pub []byte) error {
	cPub, pPub, err := unpackPair(pub, cryptoerrors.KeyPublic, AlgHybridSignature)
	if err != nil {
		return err
	}
	if err := s.Classical.CheckPublicKey(cPub); err != nil {
		return err
	}
	return s.PostQuantum.CheckPublicKey(pPub)
}

// packPair encodes two byte strings as u32 BE length || bytes, twice.
func packPair(a, b []byte) []byte {
	return packParts(a, b)
}

func packParts(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += 4 + len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = binary.BigEndian.AppendUint32(out, uint32(len(p)))
		out = append(out, p...)
	}
	return out
}

// unpackParts splits exactly count length-prefixed parts and rejects
// trailing bytes. Returned slices are copies.
func unpackParts(data []byte, count int) ([][]byte, error) {
	parts := make([][]byte, 0, count)
	rest := data
	for i := 0; i < count; i++ {
		if len(rest) < 4 {
			return nil, fmt.Errorf("component %d: truncated length prefix", i)
		}
		n := binary.BigEndian.Uint32(rest)
		rest = rest[4:]
		if uint64(n) > uint64(len(rest)) {
			return nil, fmt.Errorf("component %d: length %d exceeds remaining %d bytes", i, n, len(rest))
		}
		parts = append(parts, bytes.Clone(rest[:n]))
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%d trailing bytes", len(rest))
	}
	return parts, nil
}

func unpackPair(data []byte, kind cryptoerrors.KeyKind, alg string) (a, b []byte, err error) {
	parts, err := unpackParts(data, 2)
	if err != nil {
		return nil, nil, &cryptoerrors.KeyFormatError{Kind: kind, Algorithm: alg, Reason: err.Error()}
	}
	return parts[0], parts[1], nil
}
