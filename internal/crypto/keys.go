package crypto

import (
	"bytes"
	"fmt"

	"github.com/nanomessenger/client-go/mode"
)

// Signer is anything that can sign a message payload.
type Signer interface {
	Mode() mode.Mode
	PublicKeyString() string
	Sign(msg []byte) ([]byte, error)
}

// KeyPair is a complete identity in one crypto mode. The set of
// implementations is closed: *ClassicalKeyPair, *HybridKeyPair and
// *PostQuantumKeyPair. The mode is a property of the concrete type.
type KeyPair interface {
	Signer
	PublicKeys() PublicKeys
	Decrypt(m mode.Mode, ciphertext []byte) ([]byte, error)
	keyPair()
}

// PublicKeys is the public half of a KeyPair.
type PublicKeys interface {
	Mode() mode.Mode
	PublicKeyString() string
	Fingerprint() string
	Verify(msg, sig []byte) error
	Encrypt(m mode.Mode, plaintext []byte) ([]byte, error)
	publicKeys()
}

// GenerateKeyPair creates a fresh keypair for m.
func GenerateKeyPair(m mode.Mode) (KeyPair, error) {
	switch m {
	case mode.Classical:
		return GenerateClassicalKeyPair()
	case mode.Hybrid:
		return GenerateHybridKeyPair()
	case mode.Quantum:
		return GeneratePostQuantumKeyPair()
	default:
		return nil, fmt.Errorf("%w: %s", mode.ErrUnknownMode, m)
	}
}

func encryptModeError(m, keys mode.Mode) error {
	return &mode.PolicyError{
		Mode:   m,
		Reason: fmt.Sprintf("cannot encrypt in %s mode to %s public keys", m, keys),
	}
}

func decryptModeError(m, keys mode.Mode) error {
	return &mode.PolicyError{
		Mode:   m,
		Reason: fmt.Sprintf("cannot decrypt %s ciphertext with a %s keypair", m, keys),
	}
}

// ClassicalKeyPair holds an Ed25519 signing key and an X25519 key.
type ClassicalKeyPair struct {
	signing  []byte
	exchange []byte
	public   *ClassicalPublicKeys
}

// ClassicalPublicKeys holds an Ed25519 verifying key and an X25519 public key.
type ClassicalPublicKeys struct {
	Signing  []byte
	Exchange []byte
}

// GenerateClassicalKeyPair creates a new classical identity.
func GenerateClassicalKeyPair() (*ClassicalKeyPair, error) {
	sPriv, sPub, err := Ed25519{}.GenerateKey()
	if err != nil {
		return nil, err
	}
	xPriv, xPub, err := X25519{}.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &ClassicalKeyPair{
		signing:  sPriv,
		exchange: xPriv,
		public:   &ClassicalPublicKeys{Signing: sPub, Exchange: xPub},
	}, nil
}

// NewClassicalKeyPair rebuilds a classical identity from its private parts.
func NewClassicalKeyPair(signingSeed, exchangeKey []byte) (*ClassicalKeyPair, error) {
	sPub, err := Ed25519{}.PublicKey(signingSeed)
	if err != nil {
		return nil, err
	}
	xPub, err := X25519{}.PublicKey(exchangeKey)
	if err != nil {
		return nil, err
	}
	return &ClassicalKeyPair{
		signing:  bytes.Clone(signingSeed),
		exchange: bytes.Clone(exchangeKey),
		public:   &ClassicalPublicKeys{Signing: sPub, Exchange: xPub},
	}, nil
}

func (k *ClassicalKeyPair) keyPair() {}

// Mode returns mode.Classical.
func (k *ClassicalKeyPair) Mode() mode.Mode { return mode.Classical }

// PublicKeys returns the public half.
func (k *ClassicalKeyPair) PublicKeys() PublicKeys { return k.public }

// PublicKeyString returns "pubkey:<b64>".
func (k *ClassicalKeyPair) PublicKeyString() string { return k.public.PublicKeyString() }

// Sign signs msg with Ed25519.
func (k *ClassicalKeyPair) Sign(msg []byte) ([]byte, error) {
	return Ed25519{}.Sign(k.signing, msg)
}

// Decrypt opens a Classical ciphertext.
func (k *ClassicalKeyPair) Decrypt(m mode.Mode, ciphertext []byte) ([]byte, error) {
	if m != mode.Classical {
		return nil, decryptModeError(m, mode.Classical)
	}
	return ClassicalEncryption().Decrypt(k.exchange, ciphertext)
}

func (p *ClassicalPublicKeys) publicKeys() {}

// Mode returns mode.Classical.
func (p *ClassicalPublicKeys) Mode() mode.Mode { return mode.Classical }

// PublicKeyString returns "pubkey:<b64>".
func (p *ClassicalPublicKeys) PublicKeyString() string {
	return PrefixClassical + ToBase64(p.Signing)
}

// Fingerprint returns a short BLAKE3 identifier of the public key string.
func (p *ClassicalPublicKeys) Fingerprint() string { return Fingerprint(p.PublicKeyString()) }

// Verify checks an Ed25519 signature.
func (p *ClassicalPublicKeys) Verify(msg, sig []byte) error {
	return Ed25519{}.Verify(p.Signing, msg, sig)
}

// Encrypt encrypts to the X25519 key. Only mode.Classical is allowed.
func (p *ClassicalPublicKeys) Encrypt(m mode.Mode, plaintext []byte) ([]byte, error) {
	if m != mode.Classical {
		return nil, encryptModeError(m, mode.Classical)
	}
	return ClassicalEncryption().Encrypt(p.Exchange, plaintext)
}

// PostQuantumKeyPair holds an ML-DSA-65 signing key and an ML-KEM-768 decapsulation key.
type PostQuantumKeyPair struct {
	signing []byte
	kem     []byte
	public  *PostQuantumPublicKeys
}

// PostQuantumPublicKeys holds an ML-DSA-65 verifying key and an ML-KEM-768 encapsulation key.
type PostQuantumPublicKeys struct {
	Signing []byte
	KEM     []byte
}

// GeneratePostQuantumKeyPair creates a new post-quantum identity.
func GeneratePostQuantumKeyPair() (*PostQuantumKeyPair, error) {
	sPriv, sPub, err := MLDSA65{}.GenerateKey()
	if err != nil {
		return nil, err
	}
	kPriv, kPub, err := MLKEM768{}.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &PostQuantumKeyPair{
		signing: sPriv,
		kem:     kPriv,
		public:  &PostQuantumPublicKeys{Signing: sPub, KEM: kPub},
	}, nil
}

// NewPostQuantumKeyPair rebuilds a post-quantum identity from its private parts.
func NewPostQuantumKeyPair(signingKey, kemKey []byte) (*PostQuantumKeyPair, error) {
	sPub, err := MLDSA65{}.PublicKey(signingKey)
	if err != nil {
		return nil, err
	}
	kPub, err := MLKEM768{}.PublicKey(kemKey)
	if err != nil {
		return nil, err
	}
	return &PostQuantumKeyPair{
		signing: bytes.Clone(signingKey),
		kem:     bytes.Clone(kemKey),
		public:  &PostQuantumPublicKeys{Signing: sPub, KEM: kPub},
	}, nil
}

func (k *PostQuantumKeyPair) keyPair() {}

// Mode returns mode.Quantum.
func (k *PostQuantumKeyPair) Mode() mode.Mode { return mode.Quantum }

// PublicKeys returns the public half.
func (k *PostQuantumKeyPair) PublicKeys() PublicKeys { return k.public }

// PublicKeyString returns "pq-pubkey:<b64>".
func (k *PostQuantumKeyPair) PublicKeyString() string { return k.public.PublicKeyString() }

// Sign signs msg with ML-DSA-65.
func (k *PostQuantumKeyPair) Sign(msg []byte) ([]byte, error) {
	return MLDSA65{}.Sign(k.signing, msg)
}

// Decrypt opens a Quantum ciphertext.
func (k *PostQuantumKeyPair) Decrypt(m mode.Mode, ciphertext []byte) ([]byte, error) {
	if m != mode.Quantum {
		return nil, decryptModeError(m, mode.Quantum)
	}
	return QuantumEncryption().Decrypt(k.kem, ciphertext)
}

func (p *PostQuantumPublicKeys) publicKeys() {}

// Mode returns mode.Quantum.
func (p *PostQuantumPublicKeys) Mode() mode.Mode { return mode.Quantum }

// PublicKeyString returns "pq-pubkey:<b64>".
func (p *PostQuantumPublicKeys) PublicKeyString() string {
	return PrefixQuantum + ToBase64(p.Signing)
}

// Fingerprint returns a short BLAKE3 identifier of the public key string.
func (p *PostQuantumPublicKeys) Fingerprint() string { return Fingerprint(p.PublicKeyString()) }

// Verify checks an ML-DSA-65 signature.
func (p *PostQuantumPublicKeys) Verify(msg, sig []byte) error {
	return MLDSA65{}.Verify(p.Signing, msg, sig)
}

// Encrypt encrypts to the ML-KEM key. Only mode.Quantum is allowed.
func (p *PostQuantumPublicKeys) Encrypt(m mode.Mode, plaintext []byte) ([]byte, error) {
	if m != mode.Quantum {
		return nil, encryptModeError(m, mode.Quantum)
	}
	return QuantumEncryption().Encrypt(p.KEM, plaintext)
}

// HybridKeyPair owns exactly one classical and one post-quantum keypair.
// The halves are never handed out separately.
type HybridKeyPair struct {
	classical *ClassicalKeyPair
	quantum   *PostQuantumKeyPair
	public    *HybridPublicKeys
}

// HybridPublicKeys is the public half of a HybridKeyPair.
type HybridPublicKeys struct {
	Classical   ClassicalPublicKeys
	PostQuantum PostQuantumPublicKeys
}

// GenerateHybridKeyPair creates a new hybrid identity.
func GenerateHybridKeyPair() (*HybridKeyPair, error) {
	c, err := GenerateClassicalKeyPair()
	if err != nil {
		return nil, err
	}
	q, err := GeneratePostQuantumKeyPair()
	if err != nil {
		return nil, err
	}
	return newHybridKeyPair(c, q), nil
}

// NewHybridKeyPair rebuilds a hybrid identity from its four private parts.
func NewHybridKeyPair(signingSeed, exchangeKey, pqSigningKey, kemKey []byte) (*HybridKeyPair, error) {
	c, err := NewClassicalKeyPair(signingSeed, exchangeKey)
	if err != nil {
		return nil, err
	}
	q, err := NewPostQuantumKeyPair(pqSigningKey, kemKey)
	if err != nil {
		return nil, err
	}
	return newHybridKeyPair(c, q), nil
}

func newHybridKeyPair(c *ClassicalKeyPair, q *PostQuantumKeyPair) *HybridKeyPair {
	return &HybridKeyPair{
		classical: c,
		quantum:   q,
		public: &HybridPublicKeys{
			Classical:   *c.public,
			PostQuantum: *q.public,
		},
	}
}

func (k *HybridKeyPair) keyPair() {}

// Mode returns mode.Hybrid.
func (k *HybridKeyPair) Mode() mode.Mode { return mode.Hybrid }

// PublicKeys returns the public half.
func (k *HybridKeyPair) PublicKeys() PublicKeys { return k.public }

// PublicKeyString returns "hybrid-pubkey:<b64>".
func (k *HybridKeyPair) PublicKeyString() string { return k.public.PublicKeyString() }

// Sign signs msg with both Ed25519 and ML-DSA-65.
func (k *HybridKeyPair) Sign(msg []byte) ([]byte, error) {
	return HybridSignature{}.Sign(packPair(k.classical.signing, k.quantum.signing), msg)
}

// Decrypt opens a ciphertext in any mode addressed to one of this keypair's halves.
func (k *HybridKeyPair) Decrypt(m mode.Mode, ciphertext []byte) ([]byte, error) {
	switch m {
	case mode.Classical:
		return k.classical.Decrypt(m, ciphertext)
	case mode.Quantum:
		return k.quantum.Decrypt(m, ciphertext)
	case mode.Hybrid:
		return HybridEncryption().Decrypt(packPair(k.classical.exchange, k.quantum.kem), ciphertext)
	default:
		return nil, decryptModeError(m, mode.Hybrid)
	}
}

func (p *HybridPublicKeys) publicKeys() {}

// Mode returns mode.Hybrid.
func (p *HybridPublicKeys) Mode() mode.Mode { return mode.Hybrid }

// PublicKeyString returns "hybrid-pubkey:" followed by the base64 of both
// length-prefixed verifying keys.
func (p *HybridPublicKeys) PublicKeyString() string {
	return PrefixHybrid + ToBase64(packPair(p.Classical.Signing, p.PostQuantum.Signing))
}

// Fingerprint returns a short BLAKE3 identifier of the public key string.
func (p *HybridPublicKeys) Fingerprint() string { return Fingerprint(p.PublicKeyString()) }

// Verify requires both component signatures to hold.
func (p *HybridPublicKeys) Verify(msg, sig []byte) error {
	return HybridSignature{}.Verify(packPair(p.Classical.Signing, p.PostQuantum.Signing), msg, sig)
}

// Encrypt encrypts in mode m. Classical uses the X25519 half, Quantum the
// ML-KEM half and Hybrid both.
func (p *HybridPublicKeys) Encrypt(m mode.Mode, plaintext []byte) ([]byte, error) {
	switch m {
	case mode.Classical:
		return p.Classical.Encrypt(m, plaintext)
	case mode.Quantum:
		return p.PostQuantum.Encrypt(m, plaintext)
	case mode.Hybrid:
		return HybridEncryption().Encrypt(packPair(p.Classical.Exchange, p.PostQuantum.KEM), plaintext)
	default:
		return nil, encryptModeError(m, mode.Hybrid)
	}
}
