package mode

import (
	"errors"
	"fmt"

	"github.com/nanomessenger/client-go/internal/cryptoerrors"
)

// ErrUnknownMode is returned when a mode name or value is not recognised.
var ErrUnknownMode = errors.New("unknown crypto mode")

// PolicyError reports a mode that the local policy refuses.
type PolicyError struct {
	Mode    Mode
	Minimum Mode
	Reason  string
}

func (e *PolicyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("crypto mode policy violation: %s", e.Reason)
	}
	return fmt.Sprintf("crypto mode policy violation: %s is below minimum %s", e.Mode, e.Minimum)
}

// NanoError implements the marker interface for SDK errors.
func (e *PolicyError) NanoError() {}

// Is implements errors.Is for sentinel error matching.
func (e *PolicyError) Is(target error) bool {
	return target == cryptoerrors.ErrModePolicyViolation
}

// Config is the crypto policy of a deployment. It is decided once at startup
// and threaded through explicitly.
type Config struct {
	// Mode is the mode used for outgoing messages.
	Mode Mode `json:"mode" mapstructure:"mode" yaml:"mode"`
	// MinimumMode is the lowest mode accepted for incoming messages.
	MinimumMode Mode `json:"minimum_mode" mapstructure:"minimum_mode" yaml:"minimum_mode"`
	// AllowAutoUpgrade lets NextMode raise Mode when a stronger mode is recommended.
	AllowAutoUpgrade bool `json:"allow_auto_upgrade" mapstructure:"allow_auto_upgrade" yaml:"allow_auto_upgrade"`
	// AdaptiveMode marks the deployment as driven by an external mode selector.
	AdaptiveMode bool `json:"adaptive_mode" mapstructure:"adaptive_mode" yaml:"adaptive_mode"`
}

// DefaultConfig returns a classical configuration that allows upgrades.
func DefaultConfig() Config {
	return Config{
		Mode:             Classical,
		MinimumMode:      Classical,
		AllowAutoUpgrade: true,
	}
}

// HighSecurityConfig requires hybrid for both sending and receiving.
func HighSecurityConfig() Config {
	return Config{
		Mode:             Hybrid,
		MinimumMode:      Hybrid,
		AllowAutoUpgrade: true,
	}
}

// PerformanceConfig stays classical and lets an adaptive selector decide.
func PerformanceConfig() Config {
	return Config{
		Mode:         Classical,
		MinimumMode:  Classical,
		AdaptiveMode: true,
	}
}

// Validate checks that both modes are set and Mode >= MinimumMode.
func (c Config) Validate() error {
	if !c.Mode.IsValid() {
		return &PolicyError{Mode: c.Mode, Minimum: c.MinimumMode, Reason: "mode is not set"}
	}
	if !c.MinimumMode.IsValid() {
		return &PolicyError{Mode: c.Mode, Minimum: c.MinimumMode, Reason: "minimum_mode is not set"}
	}
	if c.Mode.SecurityLevel() < c.MinimumMode.SecurityLevel() {
		return &PolicyError{
			Mode:    c.Mode,
			Minimum: c.MinimumMode,
			Reason:  fmt.Sprintf("configured mode %s is below minimum %s", c.Mode, c.MinimumMode),
		}
	}
	return nil
}

// Accepts reports whether an incoming message in mode m meets the minimum.
func (c Config) Accepts(m Mode) bool {
	return m.IsValid() && m.SecurityLevel() >= c.MinimumMode.SecurityLevel()
}

// CheckIncoming returns a *PolicyError when m is below the minimum.
// It needs no key material, so relays can apply it before decryption.
func (c Config) CheckIncoming(m Mode) error {
	if !m.IsValid() {
		return &PolicyError{Mode: m, Minimum: c.MinimumMode, Reason: fmt.Sprintf("unknown mode %s", m)}
	}
	if !c.Accepts(m) {
		return &PolicyError{Mode: m, Minimum: c.MinimumMode}
	}
	return nil
}

// NextMode returns the mode to use for the next outgoing message given a
// recommendation from an adaptive selector. The result is never below
// c.Mode and only rises when AllowAutoUpgrade is set.
func (c Config) NextMode(recommended Mode) Mode {
	if c.AllowAutoUpgrade && c.Mode.CanTransitionTo(recommended) {
		return recommended
	}
	return c.Mode
}
