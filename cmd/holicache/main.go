// Package main is the entry point for holicache.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

const (
	appName           = "holicache"
	defaultConfigFile = "holicache.yaml"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Hybrid cache for holiday descriptions",
		Long: `holicache resolves holiday descriptions through a remote Supabase table,
a local file cache and an in-memory cache, writing through to every tier
and falling back to local data while the remote store is unreachable.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"config file path (default: ./"+defaultConfigFile+" or ~/.config/holicache/config.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newGetCmd(opts),
		newSetCmd(opts),
		newInvalidateCmd(opts),
		newStatusCmd(opts),
		newListCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}
