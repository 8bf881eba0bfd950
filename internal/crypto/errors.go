package crypto

import (
	"errors"

	"github.com/nanomessenger/client-go/internal/cryptoerrors"
)

// Errors shared with the rest of the client.
var (
	ErrKeyFormat            = cryptoerrors.ErrKeyFormat
	ErrSignatureInvalid     = cryptoerrors.ErrSignatureInvalid
	ErrAuthenticationFailed = cryptoerrors.ErrAuthenticationFailed
	ErrModePolicyViolation  = cryptoerrors.ErrModePolicyViolation
)

var (
	// ErrInvalidKeySize is returned when a symmetric key has the wrong length.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrWeakSharedSecret is returned when X25519 produces an all-zero output,
	// which happens for low-order peer points.
	ErrWeakSharedSecret = errors.New("weak shared secret")

	// ErrIdenticalSecrets is returned when both halves of a hybrid KEM yield
	// the same secret. Combining them would add nothing.
	ErrIdenticalSecrets = errors.New("hybrid component secrets are identical")
)
