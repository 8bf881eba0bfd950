package crypto

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// FingerprintPrefix marks fingerprint strings.
const FingerprintPrefix = "BLAKE3:"

// fingerprintBytes is how much of the digest is shown.
const fingerprintBytes = 16

// Fingerprint returns "BLAKE3:" followed by the hex of the first 16 bytes of
// the BLAKE3 digest of a public key string. It is for display and logging.
func Fingerprint(publicKeyString string) string {
	sum := blake3.Sum256([]byte(publicKeyString))
	return FingerprintPrefix + hex.EncodeToString(sum[:fingerprintBytes])
}
