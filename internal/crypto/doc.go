// Package crypto provides the algorithm families behind the nano-messenger
// crypto modes and the unified key abstraction that hides them.
//
// # Algorithm Families
//
// Every family is exposed through the byte-oriented capability interfaces
// [KeyExchange], [KEM], [DigitalSignature], [SymmetricEncryption] and
// [AsymmetricEncryption]:
//
//   - Classical: X25519 key exchange (lifted into a KEM by [DHKEM] with a
//     fresh ephemeral key per message), Ed25519 signatures and
//     ChaCha20-Poly1305.
//
//   - Post-quantum: ML-KEM-768 (NIST FIPS 203) key encapsulation and
//     ML-DSA-65 (NIST FIPS 204) signatures.
//
//   - Hybrid: [HybridKEM] and [HybridSignature] run one classical and one
//     post-quantum primitive side by side. KEM secrets are combined with
//     HKDF-SHA-512; signatures are valid only when both components verify.
//
// Public-key encryption in every mode is KEM + HKDF-SHA-512 +
// ChaCha20-Poly1305 ([KEMEncryption]).
//
// # Keys
//
// [KeyPair] and [PublicKeys] are closed interfaces with exactly three
// implementations each. A keypair's mode is a property of its concrete type.
// Public keys travel as prefixed strings:
//
//	pubkey:<base64 Ed25519 key>
//	hybrid-pubkey:<base64 lp(Ed25519 key) || lp(ML-DSA-65 key)>
//	pq-pubkey:<base64 ML-DSA-65 key>
//
// where lp is a 4-byte big-endian length prefix. [ParsePublicKeyString]
// picks the parser from the prefix alone.
//
// # Errors
//
// Signature and AEAD failures are reported as the opaque
// [ErrSignatureInvalid] and [ErrAuthenticationFailed]. Malformed keys are
// reported as *cryptoerrors.KeyFormatError, which never contains key bytes.
//
// Keep secret keys secure. They should never be logged, transmitted in
// plaintext, or stored in version control.
package crypto
