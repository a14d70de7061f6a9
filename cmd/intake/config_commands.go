package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration valid")
			fmt.Fprintf(out, "  env:        %s\n", cfg.Env())
			fmt.Fprintf(out, "  agent:      %s (%s)\n", cfg.Agent.Provider, cfg.Agent.Model)
			fmt.Fprintf(out, "  storage:    %s\n", cfg.Storage.Provider)
			fmt.Fprintf(out, "  categories: %d\n", len(cfg.Stages.Categories))
			fmt.Fprintf(out, "  auth:       %t\n", cfg.Auth.Enabled)
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with credentials redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			redacted := *cfg
			redact(&redacted.Agent.Token)
			redact(&redacted.Database.Password)
			redact(&redacted.Storage.ConnectionString)
			redact(&redacted.Storage.SecretKey)

			return writeJSON(cmd, redacted, false)
		},
	}
}

func redact(s *string) {
	if *s != "" {
		*s = "***"
	}
}
