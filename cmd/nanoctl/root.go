package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	nanomessenger "github.com/nanomessenger/client-go"
	"github.com/nanomessenger/client-go/internal/config"
)

// app is the state shared by all subcommands. PersistentPreRunE fills in
// everything except io and the flag values.
type app struct {
	io         IO
	configPath string
	verbose    bool

	cfg    *config.Config
	logger zerolog.Logger
	client *nanomessenger.Client
}

func newRootCmd(streams IO) *cobra.Command {
	a := &app{io: streams, logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "nanoctl",
		Short: "Manage nano-messenger identities and envelopes",
		Long: `nanoctl generates identities, seals and opens messages, and inspects
or converts envelopes using the nano-messenger crypto core.

Configuration is read from --config (YAML) and NANO_* environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		SilenceUsage: true,
	}
	cmd.SetIn(streams.Stdin)
	cmd.SetOut(streams.Stdout)
	cmd.SetErr(streams.Stderr)

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newKeygenCmd(a),
		newPubkeyCmd(a),
		newSealCmd(a),
		newOpenCmd(a),
		newInspectCmd(a),
		newDowngradeCmd(a),
		newUpgradeCmd(a),
		newConfigCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), a.configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.Logger(a.io.Stderr)
	if err != nil {
		return err //coverage:ignore
	}
	if a.verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	client, err := nanomessenger.New(
		nanomessenger.WithCryptoConfig(cfg.Crypto),
		nanomessenger.WithLogger(logger),
		nanomessenger.WithReplayWindow(cfg.Inbox.ReplayWindow),
		nanomessenger.WithEnvelopeTTL(cfg.Inbox.EnvelopeTTL),
	)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.client = client
	return nil
}

// writeJSON prints v as indented JSON on stdout.
func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.io.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// readInput reads path, or stdin when path is empty or "-".
func (a *app) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(a.io.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// readIdentity loads an exported identity file and rebuilds its key pair.
func (a *app) readIdentity(path string) (nanomessenger.KeyPair, error) {
	data, err := a.readInput(path)
	if err != nil {
		return nil, err
	}
	var exported nanomessenger.ExportedIdentity
	if err := json.Unmarshal(data, &exported); err != nil {
		return nil, fmt.Errorf("parse identity: %w", err)
	}
	return nanomessenger.ImportIdentity(&exported)
}
