package crypto

import (
	"encoding/json"
	"fmt"

	"github.com/nanomessenger/client-go/internal/cryptoerrors"
	"github.com/nanomessenger/client-go/mode"
)

// MarshalKeyPair serializes the private parts of kp as
// mode byte || lp(component)... where lp is a u32 BE length prefix.
//
//	Classical: Ed25519 seed, X25519 key
//	Hybrid:    Ed25519 seed, X25519 key, ML-DSA-65 key, ML-KEM-768 key
//	Quantum:   ML-DSA-65 key, ML-KEM-768 key
func MarshalKeyPair(kp KeyPair) ([]byte, error) {
	var parts [][]byte
	switch k := kp.(type) {
	case *ClassicalKeyPair:
		parts = [][]byte{k.signing, k.exchange}
	case *HybridKeyPair:
		parts = [][]byte{k.classical.signing, k.classical.exchange, k.quantum.signing, k.quantum.kem}
	case *PostQuantumKeyPair:
		parts = [][]byte{k.signing, k.kem}
	default:
		return nil, fmt.Errorf("%w: unsupported keypair type %T", mode.ErrUnknownMode, kp)
	}
	return append([]byte{byte(kp.Mode())}, packParts(parts...)...), nil
}

// UnmarshalKeyPair parses the output of MarshalKeyPair. Every component is
// validated and public keys are re-derived, so the result is either a
// complete keypair or a *cryptoerrors.KeyFormatError.
func UnmarshalKeyPair(data []byte) (KeyPair, error) {
	if len(data) == 0 {
		return nil, &cryptoerrors.KeyFormatError{Kind: cryptoerrors.KeySecret, Reason: "empty"}
	}
	m := mode.Mode(data[0])

	if !m.IsValid() {
		return nil, &cryptoerrors.KeyFormatError{
			Kind:   cryptoerrors.KeySecret,
			Reason: fmt.Sprintf("unknown mode byte %d", data[0]),
		}
	}
	count := 2
	if m == mode.Hybrid {
		count = 4
	}

	parts, err := unpackParts(data[1:], count)
	if err != nil {
		return nil, &cryptoerrors.KeyFormatError{Kind: cryptoerrors.KeySecret, Reason: err.Error()}
	}

	switch m {
	case mode.Classical:
		return NewClassicalKeyPair(parts[0], parts[1])
	case mode.Hybrid:
		return NewHybridKeyPair(parts[0], parts[1], parts[2], parts[3])
	default:
		return NewPostQuantumKeyPair(parts[0], parts[1])
	}
}

// publicKeysJSON is the JSON form shared by all PublicKeys implementations.
type publicKeysJSON struct {
	Mode    mode.Mode `json:"mode"`
	Ed25519 []byte    `json:"ed25519,omitempty"`
	X25519  []byte    `json:"x25519,omitempty"`
	MLDSA   []byte    `json:"ml_dsa_65,omitempty"`
	MLKEM   []byte    `json:"ml_kem_768,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (p *ClassicalPublicKeys) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicKeysJSON{Mode: mode.Classical, Ed25519: p.Signing, X25519: p.Exchange})
}

// MarshalJSON implements json.Marshaler.
func (p *PostQuantumPublicKeys) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicKeysJSON{Mode: mode.Quantum, MLDSA: p.Signing, MLKEM: p.KEM})
}

// MarshalJSON implements json.Marshaler.
func (p *HybridPublicKeys) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicKeysJSON{
		Mode:    mode.Hybrid,
		Ed25519: p.Classical.Signing,
		X25519:  p.Classical.Exchange,
		MLDSA:   p.PostQuantum.Signing,
		MLKEM:   p.PostQuantum.KEM,
	})
}

// UnmarshalPublicKeys parses the JSON produced by MarshalJSON on any
// PublicKeys implementation and validates every component.
func UnmarshalPublicKeys(data []byte) (PublicKeys, error) {
	var raw publicKeysJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &cryptoerrors.KeyFormatError{Kind: cryptoerrors.KeyPublic, Reason: "invalid JSON"}
	}

	switch raw.Mode {
	case mode.Classical:
		c, err := checkClassicalPublic(raw.Ed25519, raw.X25519)
		if err != nil {
			return nil, err
		}
		return c, nil
	case mode.Quantum:
		q, err := checkPostQuantumPublic(raw.MLDSA, raw.MLKEM)
		if err != nil {
			return nil, err
		}
		return q, nil
	case mode.Hybrid:
		c, err := checkClassicalPublic(raw.Ed25519, raw.X25519)
		if err != nil {
			return nil, err
		}
		q, err := checkPostQuantumPublic(raw.MLDSA, raw.MLKEM)
		if err != nil {
			return nil, err
		}
		return &HybridPublicKeys{Classical: *c, PostQuantum: *q}, nil
	default:
		return nil, &cryptoerrors.KeyFormatError{Kind: cryptoerrors.KeyPublic, Reason: "missing or unknown mode"}
	}
}

func checkClassicalPublic(signing, exchange []byte) (*ClassicalPublicKeys, error) {
	if err := (Ed25519{}).CheckPublicKey(signing); err != nil {
		return nil, err
	}
	if err := (X25519{}).CheckPublicKey(exchange); err != nil {
		return nil, err
	}
	return &ClassicalPublicKeys{Signing: signing, Exchange: exchange}, nil
}

func checkPostQuantumPublic(signing, kem []byte) (*PostQuantumPublicKeys, error) {
	if err := (MLDSA65{}).CheckPublicKey(signing); err != nil {
		return nil, err
	}
	if err := (MLKEM768{}).CheckPublicKey(kem); err != nil {
		return nil, err
	}
	return &PostQuantumPublicKeys{Signing: signing, KEM: kem}, nil
}
