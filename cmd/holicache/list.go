package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/omarluq/holicache/internal/di"
	"github.com/omarluq/holicache/internal/remote"
)

var errRemoteUnavailable = errors.New("remote store is disabled or not configured")

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		filter remote.Filter
		page   int
		limit  int
		manual bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List descriptions stored remotely",
		Long: `Print one page of remote descriptions as JSON, most recently updated first.
Requires a configured remote store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("manual") {
				filter.Manual = &manual
			}

			container, err := opts.newContainer()
			if err != nil {
				return err
			}
			defer shutdownContainer(container)

			client := di.MustInvoke[*di.RemoteService](container).Client
			if client == nil {
				return errRemoteUnavailable
			}

			result, err := client.ListPaged(cmd.Context(), filter, page, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&limit, "limit", remote.DefaultPageLimit, "rows per page")
	cmd.Flags().StringVar(&filter.Country, "country", "", "only this country name")
	cmd.Flags().StringVar(&filter.Locale, "locale", "", "only this locale")
	cmd.Flags().StringVar(&filter.Search, "search", "", "match holiday name or description")
	cmd.Flags().BoolVar(&manual, "manual", false, "only manual (true) or only non-manual (false) rows")
	return cmd
}
