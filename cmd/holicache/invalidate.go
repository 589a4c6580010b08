package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omarluq/holicache/internal/content"
	"github.com/omarluq/holicache/internal/di"
)

func newInvalidateCmd(opts *rootOptions) *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "invalidate HOLIDAY COUNTRY",
		Short: "Drop a description from the local and memory caches",
		Long: `Remove a description from the local and memory tiers under every country
representation. The remote table is left untouched.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := content.NewKey(args[0], args[1], locale)
			if err := key.Validate(); err != nil {
				return err
			}

			container, err := opts.newContainer()
			if err != nil {
				return err
			}
			defer shutdownContainer(container)

			engine := di.MustInvoke[*di.EngineService](container).Engine
			if engine.Invalidate(cmd.Context(), key) {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ invalidated %s\n", key)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "- nothing cached for %s\n", key)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&locale, "locale", "l", "", "description locale (default: "+content.DefaultLocale+")")
	return cmd
}
