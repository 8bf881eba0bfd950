package main

import (
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Load the configuration from --config and NANO_* environment variables,
validate it and print the result. Invalid configuration is reported as an error.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := a.client.Config()
			return a.writeJSON(struct {
				Crypto       any    `json:"crypto"`
				Security     string `json:"security"`
				ReplayWindow int    `json:"replay_window"`
				EnvelopeTTL  string `json:"envelope_ttl"`
				LogLevel     string `json:"log_level"`
			}{
				Crypto:       cfg,
				Security:     cfg.Mode.SecurityDescription(),
				ReplayWindow: a.cfg.Inbox.ReplayWindow,
				EnvelopeTTL:  a.cfg.Inbox.EnvelopeTTL.String(),
				LogLevel:     a.cfg.Log.Level,
			})
		},
	}
	return cmd
}
