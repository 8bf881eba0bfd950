package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	nanomessenger "github.com/nanomessenger/client-go"
	"github.com/nanomessenger/client-go/mode"
	"github.com/nanomessenger/client-go/protocol"
)

// inspectOutput describes an envelope without decrypting it.
type inspectOutput struct {
	Version      string     `json:"version"`
	CryptoMode   mode.Mode  `json:"crypto_mode"`
	InboxID      string     `json:"inbox_id"`
	PayloadBytes int        `json:"payload_bytes"`
	Expiry       *time.Time `json:"expiry,omitempty"`
	Expired      bool       `json:"expired"`
	LegacyCompat bool       `json:"legacy_compat"`
	Admitted     bool       `json:"admitted"`
	Reason       string     `json:"reason,omitempty"`
}

func newInspectCmd(a *app) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe an envelope and check it against the configured policy",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := a.readInput(in)
			if err != nil {
				return err
			}
			// ParseEnvelope upgrades 1.1 envelopes, so read the wire version first.
			var header struct {
				Version string `json:"version"`
			}
			if err := json.Unmarshal(data, &header); err != nil {
				return &nanomessenger.EnvelopeFormatError{Reason: "invalid JSON", Err: err}
			}

			env, err := protocol.ParseEnvelope(data)
			if err != nil {
				return err
			}
			payload, err := env.DecodePayload()
			if err != nil {
				return err
			}

			out := inspectOutput{
				Version:      header.Version,
				CryptoMode:   env.CryptoMode,
				InboxID:      env.InboxID,
				PayloadBytes: len(payload),
				Expiry:       env.Expiry,
				Expired:      env.IsExpired(),
				LegacyCompat: env.IsLegacyCompat(),
				Admitted:     true,
			}
			if err := a.client.Relay().Admit(env); err != nil {
				out.Admitted = false
				out.Reason = err.Error()
			}
			return a.writeJSON(out)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "envelope file (default stdin)")
	return cmd
}

func newDowngradeCmd(a *app) *cobra.Command {
	var (
		in    string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "downgrade",
		Short: "Convert a quantum-safe envelope to the legacy 1.1 format",
		Long: `Convert a quantum-safe envelope to the legacy 1.1 format.
Only Classical envelopes are converted unless --force is given. A forced
conversion drops the crypto mode, so the receiver must already know it.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := a.readInput(in)
			if err != nil {
				return err
			}
			env, err := protocol.ParseQuantumSafeEnvelope(data)
			if err != nil {
				return err
			}

			var legacy *protocol.MessageEnvelope
			if force {
				legacy, err = env.ToLegacy()
			} else {
				legacy, err = env.Downgrade()
			}
			if err != nil {
				return err
			}
			a.logger.Debug().Stringer("mode", env.CryptoMode).Bool("force", force).Msg("envelope downgraded")
			return a.writeJSON(legacy)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "envelope file (default stdin)")
	cmd.Flags().BoolVar(&force, "force", false, "convert non-Classical envelopes too")
	return cmd
}

func newUpgradeCmd(a *app) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Convert a legacy 1.1 envelope to the quantum-safe format",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := a.readInput(in)
			if err != nil {
				return err
			}
			legacy, err := protocol.ParseMessageEnvelope(data)
			if err != nil {
				return err
			}
			env, err := protocol.FromLegacy(legacy)
			if err != nil {
				return err
			}
			return a.writeJSON(env)
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "envelope file (default stdin)")
	return cmd
}
