package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/omarluq/holicache/internal/di"
)

const statusTimeout = 5 * time.Second

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var server bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show tier health and hit counters",
		Long: `Print the engine status as JSON: remote reachability, local cache size and
memory cache counters. With --server the running holicache serve process is
queried through its /status endpoint instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := opts.newContainer()
			if err != nil {
				return err
			}
			defer shutdownContainer(container)

			if server {
				cfgSvc := di.MustInvoke[*di.ConfigService](container)
				return queryServerStatus(cmd.Context(), cmd.OutOrStdout(), cfgSvc.Get().Server.GetListen())
			}

			engine := di.MustInvoke[*di.EngineService](container).Engine
			status, err := engine.Status(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}

	cmd.Flags().BoolVar(&server, "server", false, "query the running server instead of opening the caches")
	return cmd
}

// queryServerStatus checks /healthz on listen and copies /status to w.
func queryServerStatus(ctx context.Context, w io.Writer, listen string) error {
	client := &http.Client{Timeout: statusTimeout}
	base := "http://" + listen

	if _, err := fetch(ctx, client, base+"/healthz"); err != nil {
		fmt.Fprintf(w, "✗ holicache is not running (%s)\n", listen)
		return fmt.Errorf("server not reachable: %w", err)
	}

	body, err := fetch(ctx, client, base+"/status")
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}
	return body, nil
}
