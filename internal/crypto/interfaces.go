package crypto

// Capability interfaces. All keys cross these boundaries as raw bytes so a
// family can be swapped without touching callers. Implementations never
// include key bytes in returned errors.

// KeyExchange is an interactive Diffie-Hellman style agreement.
// Exchange(a, B) and Exchange(b, A) yield the same secret.
type KeyExchange interface {
	Name() string
	GenerateKey() (priv, pub []byte, err error)
	PublicKey(priv []byte) ([]byte, error)
	Exchange(priv, peerPub []byte) ([]byte, error)
	CheckPublicKey(pub []byte) error
}

// KEM is a key encapsulation mechanism: the sender derives a secret and a
// ciphertext from the recipient's public key alone.
type KEM interface {
	Name() string
	GenerateKey() (priv, pub []byte, err error)
	PublicKey(priv []byte) ([]byte, error)
	Encapsulate(pub []byte) (secret, ciphertext []byte, err error)
	Decapsulate(priv, ciphertext []byte) ([]byte, error)
	CiphertextSize() int
	CheckPublicKey(pub []byte) error
}

// DigitalSignature signs and verifies messages. Verify returns
// ErrSignatureInvalid for any mismatch.
type DigitalSignature interface {
	Name() string
	GenerateKey() (priv, pub []byte, err error)
	PublicKey(priv []byte) ([]byte, error)
	Sign(priv, msg []byte) ([]byte, error)
	Verify(pub, msg, sig []byte) error
	CheckPublicKey(pub []byte) error
}

// SymmetricEncryption is an AEAD whose ciphertexts carry their own nonce.
// Decrypt returns ErrAuthenticationFailed when anything was altered.
type SymmetricEncryption interface {
	Name() string
	KeySize() int
	Encrypt(key, plaintext, aad []byte) ([]byte, error)
	Decrypt(key, ciphertext, aad []byte) ([]byte, error)
}

// AsymmetricEncryption encrypts to a recipient public key.
type AsymmetricEncryption interface {
	Encrypt(recipientPub, plaintext []byte) ([]byte, error)
	Decrypt(priv, ciphertext []byte) ([]byte, error)
}

var (
	_ KeyExchange          = X25519{}
	_ KEM                  = DHKEM{}
	_ KEM                  = MLKEM768{}
	_ KEM                  = HybridKEM{}
	_ DigitalSignature     = Ed25519{}
	_ DigitalSignature     = MLDSA65{}
	_ DigitalSignature     = HybridSignature{}
	_ SymmetricEncryption  = ChaCha20Poly1305{}
	_ AsymmetricEncryption = KEMEncryption{}
)
