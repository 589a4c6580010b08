package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/omarluq/holicache/internal/di"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the health monitor and the ops HTTP server",
		Long: `Start background remote health probing, watch the config file for changes
and serve /healthz, /status and /metrics until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := opts.newContainer()
			if err != nil {
				log.Error().Err(err).Msg("failed to initialize services")
				return err
			}

			logger := di.MustInvoke[*di.LoggerService](container).Logger
			log.Logger = *logger
			zerolog.DefaultContextLogger = logger

			addr := di.MustInvoke[*di.ServerService](container).Server.Addr()
			listener, err := (&net.ListenConfig{}).Listen(cmd.Context(), "tcp", addr)
			if err != nil {
				shutdownContainer(container)
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, container, listener)
		},
	}
}

// serve runs the server on listener until ctx is done, then shuts down the
// server and the container within the configured timeout.
func serve(ctx context.Context, container *di.Container, listener net.Listener) error {
	cfgSvc := di.MustInvoke[*di.ConfigService](container)
	loggerSvc := di.MustInvoke[*di.LoggerService](container)
	healthSvc := di.MustInvoke[*di.HealthService](container)
	serverSvc := di.MustInvoke[*di.ServerService](container)

	logger := loggerSvc.Logger
	healthSvc.Start()
	cfgSvc.StartWatching(ctx, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- serverSvc.Server.Serve(listener)
	}()

	logger.Info().Str("listen", listener.Addr().String()).Msg("starting holicache")

	var serveErr error
	select {
	case serveErr = <-errCh:
		if serveErr != nil {
			logger.Error().Err(serveErr).Msg("server error")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfgSvc.Get().Server.GetShutdownTimeout())
	defer cancel()

	if err := serverSvc.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
		serveErr = errors.Join(serveErr, err)
	}
	if err := container.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("container shutdown error")
		serveErr = errors.Join(serveErr, err)
	}

	logger.Info().Msg("server stopped")
	return serveErr
}
