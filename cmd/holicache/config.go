package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omarluq/holicache/internal/config"
)

var errNoConfigFile = errors.New("no config file found")

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}
	cmd.AddCommand(newConfigValidateCmd(opts), newConfigInitCmd())
	return cmd
}

func newConfigValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the configuration file without opening any cache tier.
Checks syntax, environment overrides and every section's values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			configPath := opts.resolveConfigPath()
			if configPath == "" {
				fmt.Fprintln(out, "✗ Config validation failed: no config file found")
				return errNoConfigFile
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				fmt.Fprintf(out, "✗ Config validation failed: %s\n", err)
				return err
			}
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(out, "✗ Config validation failed: %s\n", err)
				return err
			}

			fmt.Fprintf(out, "✓ %s is valid\n", configPath)
			return nil
		},
	}
}
