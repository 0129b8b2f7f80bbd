package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/layoutkit"
	"github.com/aretw0/layoutkit/internal/cli"
	"github.com/aretw0/layoutkit/internal/presentation/tui"
	httpAdapter "github.com/aretw0/layoutkit/pkg/adapters/http"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var port int
	var metrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the layout HTTP API",
		Long:  `Serves the layout API (save, list, load, delete, catalog nodes and workspace conversion) over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.rt.Config
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Server.Metrics = metrics
			}

			opts := []httpAdapter.Option{httpAdapter.WithLogger(a.rt.Logger)}
			if cfg.Server.Metrics {
				opts = append(opts, httpAdapter.WithMetrics(a.rt.Registry))
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:           httpAdapter.NewHandler(a.rt.Repository, a.rt.Catalog, opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			tui.PrintBanner(cmd.ErrOrStderr(), strings.TrimSpace(layoutkit.Version))

			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()
			return serveUntilDone(ctx, srv, a)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Expose Prometheus metrics on /metrics")
	return cmd
}

func serveUntilDone(ctx *cli.SignalContext, srv *http.Server, a *app) error {
	logger := a.rt.Logger

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting LayoutKit server",
			"address", srv.Addr,
			"storage", a.rt.Config.Storage.Driver,
			"metrics", a.rt.Config.Server.Metrics)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown", "signal", ctx.Signal())

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("LayoutKit server stopped gracefully")
		return nil
	}
}
