package crypto

const (
	// X25519KeySize is the size of X25519 public and private keys in bytes.
	X25519KeySize = 32
	// X25519SharedSecretSize is the size of an X25519 shared secret in bytes.
	X25519SharedSecretSize = 32

	// Ed25519PublicKeySize is the size of an Ed25519 verifying key in bytes.
	Ed25519PublicKeySize = 32
	// Ed25519SeedSize is the size of the serialized Ed25519 signing key (its seed).
	Ed25519SeedSize = 32
	// Ed25519SignatureSize is the size of an Ed25519 signature in bytes.
	Ed25519SignatureSize = 64

	// ChaChaKeySize is the size of a ChaCha20-Poly1305 key in bytes.
	ChaChaKeySize = 32
	// ChaChaNonceSize is the size of a ChaCha20-Poly1305 nonce in bytes.
	ChaChaNonceSize = 12
	// ChaChaTagSize is the size of a Poly1305 authentication tag in bytes.
	ChaChaTagSize = 16

	// MLKEMPublicKeySize is the size of an ML-KEM-768 public key in bytes.
	MLKEMPublicKeySize = 1184
	// MLKEMSecretKeySize is the size of an ML-KEM-768 secret key in bytes.
	MLKEMSecretKeySize = 2400
	// MLKEMCiphertextSize is the size of an ML-KEM-768 ciphertext in bytes.
	MLKEMCiphertextSize = 1088
	// MLKEMSharedKeySize is the size of the shared secret from ML-KEM-768 in bytes.
	MLKEMSharedKeySize = 32

	// MLDSAPublicKeySize is the size of an ML-DSA-65 public key in bytes.
	MLDSAPublicKeySize = 1952
	// MLDSASecretKeySize is the size of an ML-DSA-65 secret key in bytes.
	MLDSASecretKeySize = 4032
	// MLDSASignatureSize is the size of an ML-DSA-65 signature in bytes.
	MLDSASignatureSize = 3309

	// SessionKeySize is the size of keys derived for message encryption.
	SessionKeySize = 32
)

// HKDF info strings for domain separation.
const (
	// HKDFContextClassical is used when encrypting to an X25519 recipient.
	HKDFContextClassical = "nano-messenger:classical:v2"
	// HKDFContextQuantum is used when encrypting to an ML-KEM recipient.
	HKDFContextQuantum = "nano-messenger:quantum:v2"
	// HKDFContextHybrid is used for the hybrid KEM combiner.
	HKDFContextHybrid = "nano-messenger:hybrid:v2"
)

// Public key string prefixes. The prefix alone selects the parser.
const (
	PrefixClassical = "pubkey:"
	PrefixHybrid    = "hybrid-pubkey:"
	PrefixQuantum   = "pq-pubkey:"
)

// Algorithm names used in errors and descriptions.
const (
	AlgX25519           = "X25519"
	AlgEd25519          = "Ed25519"
	AlgChaCha20Poly1305 = "ChaCha20-Poly1305"
	AlgMLKEM768         = "ML-KEM-768"
	AlgMLDSA65          = "ML-DSA-65"
	AlgHybridKEM        = "X25519+ML-KEM-768"
	AlgHybridSignature  = "Ed25519+ML-DSA-65"
)
