// Package cryptoerrors provides the shared error taxonomy for the nano-messenger client.
package cryptoerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrKeyFormat is returned when key bytes or a public key string cannot be parsed.
	ErrKeyFormat = errors.New("invalid key format")

	// ErrSignatureInvalid is returned when signature verification fails.
	// It carries no detail about which component failed.
	ErrSignatureInvalid = errors.New("signature verification failed")

	// ErrAuthenticationFailed is returned when authenticated decryption fails.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrModePolicyViolation is returned when a crypto mode is below the
	// configured minimum or a mode/key combination is not allowed.
	ErrModePolicyViolation = errors.New("crypto mode policy violation")

	// ErrEnvelopeFormat is returned when an envelope is malformed.
	ErrEnvelopeFormat = errors.New("invalid envelope format")

	// ErrExpired is returned when an envelope is past its expiry.
	ErrExpired = errors.New("envelope has expired")
)

// KeyKind identifies which kind of key an error relates to.
type KeyKind string

const (
	// KeyUnknown indicates the key kind is not specified.
	KeyUnknown KeyKind = ""
	// KeyPublic indicates a public key or tagged public key string.
	KeyPublic KeyKind = "public key"
	// KeySecret indicates serialized secret key material.
	KeySecret KeyKind = "secret key"
	// KeySignature indicates a signature blob.
	KeySignature KeyKind = "signature"
)

// KeyFormatError reports a malformed key. It never includes key bytes.
type KeyFormatError struct {
	Kind      KeyKind
	Algorithm string
	Reason    string
}

func (e *KeyFormatError) Error() string {
	kind := e.Kind
	if kind == KeyUnknown {
		kind = "key"
	}
	if e.Algorithm != "" {
		return fmt.Sprintf("invalid %s %s: %s", e.Algorithm, kind, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", kind, e.Reason)
}

// NanoError implements the marker interface for SDK errors.
func (e *KeyFormatError) NanoError() {}

// Is implements errors.Is for sentinel error matching.
func (e *KeyFormatError) Is(target error) bool {
	return target == ErrKeyFormat
}

// NewKeyFormatError is a shorthand for building a KeyFormatError.
func NewKeyFormatError(kind KeyKind, algorithm, format string, args ...any) error {
	return &KeyFormatError{
		Kind:      kind,
		Algorithm: algorithm,
		Reason:    fmt.Sprintf(format, args...),
	}
}

// EnvelopeFormatError reports which envelope field failed to parse.
type EnvelopeFormatError struct {
	Field  string
	Reason string
	Err    error
}

func (e *EnvelopeFormatError) Error() string {
	msg := "invalid envelope"
	if e.Field != "" {
		msg += " field " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// NanoError implements the marker interface for SDK errors.
func (e *EnvelopeFormatError) NanoError() {}

// Is implements errors.Is for sentinel error matching.
func (e *EnvelopeFormatError) Is(target error) bool {
	return target == ErrEnvelopeFormat
}

// Unwrap returns the underlying error.
func (e *EnvelopeFormatError) Unwrap() error {
	return e.Err
}
