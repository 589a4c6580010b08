package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/omarluq/holicache/internal/content"
	"github.com/omarluq/holicache/internal/di"
)

// defaultSetConfidence is used for non-manual writes without --confidence.
const defaultSetConfidence = 0.5

func newSetCmd(opts *rootOptions) *cobra.Command {
	var (
		locale     string
		id         string
		confidence float64
		manual     bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "set HOLIDAY COUNTRY DESCRIPTION",
		Short: "Store a holiday description",
		Long: `Store a description in every tier. Unless --force is given, a write that
would replace a manual or higher-confidence description is skipped.
--manual marks the description as hand-written with full confidence.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if manual {
				confidence = content.ManualConfidence
			}
			now := time.Now().UTC()
			rec := content.Record{
				ID:          id,
				Holiday:     args[0],
				Country:     args[1],
				Locale:      content.NormalizeLocale(locale),
				Body:        args[2],
				Confidence:  confidence,
				Manual:      manual,
				GeneratedAt: now,
				LastUsedAt:  now,
			}
			if err := rec.Validate(); err != nil {
				return err
			}

			container, err := opts.newContainer()
			if err != nil {
				return err
			}
			defer shutdownContainer(container)

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			key := rec.Key()

			if force {
				engine := di.MustInvoke[*di.EngineService](container).Engine
				if err := engine.SetDescription(ctx, rec); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ saved %s\n", key)
				return nil
			}

			svc := di.MustInvoke[*di.GeneratorService](container).Service
			saved, err := svc.Save(ctx, rec)
			if err != nil {
				return err
			}
			if !saved {
				fmt.Fprintf(out, "- kept existing %s (use --force to overwrite)\n", key)
				return nil
			}
			fmt.Fprintf(out, "✓ saved %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVarP(&locale, "locale", "l", "", "description locale (default: "+content.DefaultLocale+")")
	cmd.Flags().StringVar(&id, "id", "", "content id of the record to update")
	cmd.Flags().Float64Var(&confidence, "confidence", defaultSetConfidence, "confidence in [0, 1]")
	cmd.Flags().BoolVar(&manual, "manual", false, "mark as a hand-written description")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite regardless of the existing description")
	return cmd
}
