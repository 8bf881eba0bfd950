package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	nanomessenger "github.com/nanomessenger/client-go"
	"github.com/nanomessenger/client-go/mode"
)

// publicKeysOutput is what pubkey prints and what seal --to reads.
type publicKeysOutput struct {
	Mode        mode.Mode       `json:"mode"`
	PublicKey   string          `json:"public_key"`
	Fingerprint string          `json:"fingerprint"`
	Keys        json.RawMessage `json:"keys"`
}

func newKeygenCmd(a *app) *cobra.Command {
	var (
		modeName string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an identity and print it as JSON",
		Long: `Generate a key pair and print it as an exported identity.
The output contains secret key material.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			m := a.cfg.Crypto.Mode
			if modeName != "" {
				parsed, err := mode.ParseMode(modeName)
				if err != nil {
					return err
				}
				m = parsed
			}

			kp, err := nanomessenger.GenerateKeyPair(m)
			if err != nil {
				return err
			}
			exported, err := nanomessenger.ExportIdentity(kp)
			if err != nil {
				return err
			}
			a.logger.Info().
				Stringer("mode", m).
				Str("fingerprint", kp.PublicKeys().Fingerprint()).
				Msg("identity generated")

			if out == "" {
				return a.writeJSON(exported)
			}
			data, err := json.MarshalIndent(exported, "", "  ")
			if err != nil {
				return fmt.Errorf("encode identity: %w", err) //coverage:ignore
			}
			if err := os.WriteFile(out, append(data, '\n'), 0o600); err != nil {
				return fmt.Errorf("write identity: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modeName, "mode", "m", "", "crypto mode (classical, hybrid, quantum); defaults to the configured mode")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the identity to this file with 0600 permissions")
	return cmd
}

func newPubkeyCmd(a *app) *cobra.Command {
	var identity string
	cmd := &cobra.Command{
		Use:   "pubkey",
		Short: "Print the public half of an identity",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			kp, err := a.readIdentity(identity)
			if err != nil {
				return err
			}
			pub := kp.PublicKeys()
			keys, err := json.Marshal(pub)
			if err != nil {
				return fmt.Errorf("encode public keys: %w", err) //coverage:ignore
			}
			return a.writeJSON(publicKeysOutput{
				Mode:        pub.Mode(),
				PublicKey:   pub.PublicKeyString(),
				Fingerprint: pub.Fingerprint(),
				Keys:        keys,
			})
		},
	}
	cmd.Flags().StringVarP(&identity, "identity", "i", "", "identity file (default stdin)")
	return cmd
}

// readRecipient loads the output of pubkey and returns the encryption keys.
func (a *app) readRecipient(path string) (nanomessenger.PublicKeys, error) {
	data, err := a.readInput(path)
	if err != nil {
		return nil, err
	}
	var out publicKeysOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse recipient: %w", err)
	}
	return nanomessenger.ParsePublicKeys(out.Keys)
}
