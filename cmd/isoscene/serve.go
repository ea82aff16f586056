package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/isoscene/internal/config"
	"github.com/aretw0/isoscene/internal/presentation/tui"
	httpAdapter "github.com/aretw0/isoscene/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves every workspace over a JSON API with server-sent events.
The OpenAPI description is at /openapi.yaml and Prometheus metrics, when enabled, at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, func(cfg *config.Config) {
			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics, _ = cmd.Flags().GetBool("metrics")
			}
			if cmd.Flags().Changed("validate") {
				cfg.ValidateRequests, _ = cmd.Flags().GetBool("validate")
			}
		})
		if err != nil {
			return err
		}
		defer a.Close()

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(a.logger),
			httpAdapter.WithRequestValidation(a.cfg.ValidateRequests),
		}
		if a.metrics != nil {
			opts = append(opts, httpAdapter.WithMetricsHandler(a.metrics.Handler()))
		}
		handler, err := httpAdapter.NewHandler(a.mgr, opts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", a.cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			tui.PrintBanner(cmd.ErrOrStderr())
			a.logger.Info("Starting isoscene server", "addr", srv.Addr, "backend", a.cfg.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			a.logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				a.logger.Warn("Graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("killing server: %w", err)
				}
			}
			a.logger.Info("isoscene server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides the config)")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
	serveCmd.Flags().Bool("validate", false, "Validate requests against the OpenAPI description")
}
