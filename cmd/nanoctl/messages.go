package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	nanomessenger "github.com/nanomessenger/client-go"
	"github.com/nanomessenger/client-go/mode"
	"github.com/nanomessenger/client-go/protocol"
)

// payloadOutput is the readable form of an opened message.
type payloadOutput struct {
	From        string    `json:"from"`
	Fingerprint string    `json:"fingerprint"`
	Mode        mode.Mode `json:"crypto_mode"`
	Counter     uint64    `json:"counter"`
	Timestamp   time.Time `json:"timestamp"`
	Room        *string   `json:"room,omitempty"`
	Body        string    `json:"body"`
}

func newSealCmd(a *app) *cobra.Command {
	var (
		identity string
		to       string
		body     string
		room     string
		counter  uint64
	)
	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Sign and encrypt a message into a quantum-safe envelope",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if identity == "" || to == "" {
				return errors.New("--identity and --to are required")
			}
			from, err := a.readIdentity(identity)
			if err != nil {
				return err
			}
			recipient, err := a.readRecipient(to)
			if err != nil {
				return err
			}

			var opts []protocol.PayloadOption
			if room != "" {
				opts = append(opts, protocol.WithRoom(room))
			}
			env, err := a.client.Seal(from, recipient, []byte(body), counter, opts...)
			if err != nil {
				return err
			}
			return a.writeJSON(env)
		},
	}
	cmd.Flags().StringVarP(&identity, "identity", "i", "", "sender identity file")
	cmd.Flags().StringVarP(&to, "to", "t", "", "recipient public keys file (output of pubkey)")
	cmd.Flags().StringVarP(&body, "body", "b", "", "message body")
	cmd.Flags().StringVar(&room, "room", "", "room name for group messages")
	cmd.Flags().Uint64Var(&counter, "counter", 0, "per-sender message counter")
	return cmd
}

func newOpenCmd(a *app) *cobra.Command {
	var (
		identity string
		in       string
	)
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Decrypt and verify an envelope",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if identity == "" {
				return errors.New("--identity is required")
			}
			ours, err := a.readIdentity(identity)
			if err != nil {
				return err
			}
			data, err := a.readInput(in)
			if err != nil {
				return err
			}
			env, err := protocol.ParseEnvelope(data)
			if err != nil {
				return err
			}

			payload, err := a.client.Open(env, ours)
			if err != nil {
				return err
			}
			return a.writeJSON(payloadOutput{
				From:        payload.FromPubkey,
				Fingerprint: nanomessenger.Fingerprint(payload.FromPubkey),
				Mode:        payload.CryptoMode,
				Counter:     payload.Counter,
				Timestamp:   time.Unix(int64(payload.Timestamp), 0).UTC(),
				Room:        payload.Room,
				Body:        string(payload.Body),
			})
		},
	}
	cmd.Flags().StringVarP(&identity, "identity", "i", "", "recipient identity file")
	cmd.Flags().StringVar(&in, "in", "", "envelope file (default stdin)")
	return cmd
}
