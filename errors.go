package nanomessenger

import (
	"errors"
	"fmt"

	"github.com/nanomessenger/client-go/internal/cryptoerrors"
	"github.com/nanomessenger/client-go/mode"
	"github.com/nanomessenger/client-go/protocol"
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrKeyFormat is returned for malformed keys, key strings and signatures.
	ErrKeyFormat = cryptoerrors.ErrKeyFormat

	// ErrSignatureInvalid is returned when a payload signature does not verify.
	ErrSignatureInvalid = cryptoerrors.ErrSignatureInvalid

	// ErrAuthenticationFailed is returned when a ciphertext fails to decrypt.
	ErrAuthenticationFailed = cryptoerrors.ErrAuthenticationFailed

	// ErrModePolicyViolation is returned when a crypto mode is below the
	// configured minimum or does not match the keys in use.
	ErrModePolicyViolation = cryptoerrors.ErrModePolicyViolation

	// ErrEnvelopeFormat is returned for structurally invalid envelopes.
	ErrEnvelopeFormat = cryptoerrors.ErrEnvelopeFormat

	// ErrExpired is returned for envelopes past their expiry.
	ErrExpired = cryptoerrors.ErrExpired

	// ErrUnknownMode is returned when a crypto mode name or value is not recognized.
	ErrUnknownMode = mode.ErrUnknownMode

	// ErrSignerMismatch is returned when a payload names a different sender
	// than the key signing it.
	ErrSignerMismatch = protocol.ErrSignerMismatch

	// ErrConfigAlreadyInitialized is returned by Configure after the crypto
	// config has been set once.
	ErrConfigAlreadyInitialized = errors.New("crypto config already initialized")

	// ErrReplayDetected is returned when a message counter was already seen
	// or fell out of the replay window.
	ErrReplayDetected = errors.New("replayed message counter")

	// ErrInvalidImportData is returned when an exported identity is invalid.
	ErrInvalidImportData = errors.New("invalid import data")
)

// NanoError is implemented by all typed errors of the client.
type NanoError interface {
	error
	NanoError() // marker method
}

// KeyFormatError describes a malformed key or signature.
type KeyFormatError = cryptoerrors.KeyFormatError

// EnvelopeFormatError describes a structurally invalid envelope.
type EnvelopeFormatError = cryptoerrors.EnvelopeFormatError

// PolicyError describes a crypto mode policy violation.
type PolicyError = mode.PolicyError

// ReplayError is returned by Inbox.Receive for a counter that is not fresh.
type ReplayError struct {
	// Sender is the fingerprint of the sender's public key.
	Sender  string
	Counter uint64
	Highest uint64
}

func (e *ReplayError) Error() string {
	if e.Counter == e.Highest {
		return fmt.Sprintf("replayed message counter %d from %s", e.Counter, e.Sender)
	}
	return fmt.Sprintf("replayed message counter %d from %s (highest %d)", e.Counter, e.Sender, e.Highest)
}

// NanoError implements the NanoError interface.
func (e *ReplayError) NanoError() {}

// Is implements errors.Is for sentinel error matching.
func (e *ReplayError) Is(target error) bool {
	return target == ErrReplayDetected
}
