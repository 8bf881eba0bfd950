// Package mode defines the crypto modes a nano-messenger channel can run in
// and the policy that decides which modes a deployment accepts.
//
// Modes are totally ordered by security level:
//
//	Classical (1) < Hybrid (2) < Quantum (3)
//
// A channel may only ever move to a mode of equal or higher level. The zero
// value of [Mode] is not a valid mode and is used to mean "unset".
package mode

import (
	"fmt"
	"strings"
)

// Mode is the cryptographic algorithm family used for a message or channel.
type Mode uint8

const (
	// Classical uses X25519, Ed25519 and ChaCha20-Poly1305.
	Classical Mode = iota + 1
	// Hybrid combines the classical and post-quantum families; both must hold.
	Hybrid
	// Quantum uses ML-KEM-768 and ML-DSA-65 only.
	Quantum
)

// AllModes returns every valid mode in ascending security order.
func AllModes() []Mode {
	return []Mode{Classical, Hybrid, Quantum}
}

// IsValid reports whether m is one of the defined modes.
func (m Mode) IsValid() bool {
	return m >= Classical && m <= Quantum
}

// SecurityLevel returns 1, 2 or 3 for Classical, Hybrid and Quantum.
// Invalid modes report 0.
func (m Mode) SecurityLevel() uint8 {
	if !m.IsValid() {
		return 0
	}
	return uint8(m)
}

// IsQuantumResistant reports whether m withstands a quantum adversary.
func (m Mode) IsQuantumResistant() bool {
	return m == Hybrid || m == Quantum
}

// PerformanceCost returns the approximate CPU cost relative to Classical.
func (m Mode) PerformanceCost() float64 {
	switch m {
	case Classical:
		return 1.0
	case Hybrid:
		return 1.8
	case Quantum:
		return 1.4
	default:
		return 0
	}
}

// SizeOverhead returns the approximate extra bytes per message relative to Classical.
func (m Mode) SizeOverhead() int {
	switch m {
	case Hybrid:
		return 2048
	case Quantum:
		return 1536
	default:
		return 0
	}
}

// CanTransitionTo reports whether a channel in mode m may move to next.
// Transitions never lower the security level.
func (m Mode) CanTransitionTo(next Mode) bool {
	if !m.IsValid() || !next.IsValid() {
		return false
	}
	return next.SecurityLevel() >= m.SecurityLevel()
}

// Description returns a short human readable summary of the algorithms used.
func (m Mode) Description() string {
	switch m {
	case Classical:
		return "Classical cryptography (X25519 + Ed25519)"
	case Hybrid:
		return "Hybrid classical + post-quantum (X25519+ML-KEM + Ed25519+ML-DSA)"
	case Quantum:
		return "Post-quantum cryptography (ML-KEM + ML-DSA)"
	default:
		return "Unknown crypto mode"
	}
}

// SecurityDescription summarises the threat model m protects against.
func (m Mode) SecurityDescription() string {
	switch m {
	case Classical:
		return "Secure against classical computers, vulnerable to quantum attacks"
	case Hybrid:
		return "Secure against both classical and quantum computers (defense in depth)"
	case Quantum:
		return "Secure against quantum computers using NIST-standardized algorithms"
	default:
		return "Unknown security properties"
	}
}

// String returns "Classical", "Hybrid" or "Quantum".
func (m Mode) String() string {
	switch m {
	case Classical:
		return "Classical"
	case Hybrid:
		return "Hybrid"
	case Quantum:
		return "Quantum"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: cannot encode %s", ErrUnknownMode, m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode parses a mode name case-insensitively. In addition to the
// canonical names it accepts "classic", "pq", "postquantum" and "post-quantum".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classical", "classic":
		return Classical, nil
	case "hybrid":
		return Hybrid, nil
	case "quantum", "postquantum", "post-quantum", "pq":
		return Quantum, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Recommend picks a mode for a threat model. A credible quantum threat
// yields Quantum when performance is critical and Hybrid otherwise.
func Recommend(quantumThreat, performanceCritical bool) Mode {
	switch {
	case quantumThreat && performanceCritical:
		return Quantum
	case quantumThreat:
		return Hybrid
	default:
		return Classical
	}
}
