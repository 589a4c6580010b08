package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omarluq/holicache/internal/content"
	"github.com/omarluq/holicache/internal/di"
)

var errNotFound = errors.New("no description found")

func newGetCmd(opts *rootOptions) *cobra.Command {
	var (
		locale   string
		generate bool
	)

	cmd := &cobra.Command{
		Use:   "get HOLIDAY COUNTRY",
		Short: "Look up a holiday description",
		Long: `Look up a description through the cache tiers and print it as JSON.
With --generate a missing description is generated and saved.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := opts.newContainer()
			if err != nil {
				return err
			}
			defer shutdownContainer(container)

			ctx := cmd.Context()
			key := content.NewKey(args[0], args[1], locale)
			if err := key.Validate(); err != nil {
				return err
			}

			if generate {
				svc := di.MustInvoke[*di.GeneratorService](container).Service
				rec, _, err := svc.Resolve(ctx, key)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rec)
			}

			engine := di.MustInvoke[*di.EngineService](container).Engine
			rec, ok := engine.GetDescription(ctx, key)
			if !ok {
				return fmt.Errorf("%w: %s", errNotFound, key)
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().StringVarP(&locale, "locale", "l", "", "description locale (default: "+content.DefaultLocale+")")
	cmd.Flags().BoolVar(&generate, "generate", false, "generate and save the description when none is cached")
	return cmd
}
