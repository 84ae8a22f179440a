package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/recap/internal/config"
	"github.com/teemow/recap/internal/instrumentation"
	"github.com/teemow/recap/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr        string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Zoom webhook server",
		Long: `Start the webhook server that reacts to Zoom recording.completed events.

Each event spawns a background job that downloads the recording's
transcript, generates analysis documents and archives everything to
Google Drive. Job progress is exposed on GET /api/v1/jobs/{id}, and
POST /api/v1/analyze runs an ad-hoc analysis without archiving.

Health endpoints are served on /healthz and /readyz, Prometheus metrics
on a dedicated metrics listener.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if metricsAddr != "" {
				cfg.Server.MetricsAddr = metricsAddr
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Metrics listen address (overrides config)")

	return cmd
}

func runServe(cfg *config.Config) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Error("instrumentation shutdown failed", "error", err)
		}
	}()

	a, err := buildApp(shutdownCtx, cfg, provider)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.shutdown(); err != nil {
			slog.Error("server context shutdown failed", "error", err)
		}
	}()

	var metricsServer *server.MetricsServer
	if provider.Enabled() && cfg.Server.MetricsAddr != "" {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Server.MetricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			slog.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				slog.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	serverOpts := []server.ServerOption{server.WithAddr(cfg.Server.Addr)}
	if provider.Enabled() {
		serverOpts = append(serverOpts, server.WithServerMetrics(provider.Metrics()))
	}
	srv := server.NewServer(a.sc, cfg.Zoom.WebhookSecret, serverOpts...)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	slog.Info("webhook server started", "addr", cfg.Server.Addr)

	select {
	case <-shutdownCtx.Done():
		slog.Info("shutdown signal received, stopping webhook server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("error shutting down webhook server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("webhook server stopped with error: %w", err)
		}
	}

	slog.Info("webhook server stopped")
	return nil
}
