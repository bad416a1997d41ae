package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/novapay"
	"github.com/aretw0/novapay/internal/cli"
	"github.com/aretw0/novapay/internal/metrics"
	"github.com/aretw0/novapay/internal/redact"
	httpAdapter "github.com/aretw0/novapay/pkg/adapters/http"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/preferences"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves wizard sessions over REST with Server-Sent Events and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector, err := metrics.New(reg)
		if err != nil {
			return err
		}

		redactor := redact.Default()
		streams := httpAdapter.NewStreamManager(logger, redactor)

		app, closeStore, err := newApp(cfg, logger,
			novapay.WithLifecycleHooks(collector.Hooks(domain.LifecycleHooks{})),
			novapay.WithObserver(streams.Observe),
		)
		if err != nil {
			return err
		}
		defer closeStore()

		handler := httpAdapter.NewHandler(app.Sessions,
			httpAdapter.WithStreams(streams),
			httpAdapter.WithRedactor(redactor),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithTitles(app.Title),
			httpAdapter.WithPreferences(preferences.NewStore(preferences.Default())),
			httpAdapter.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			httpAdapter.WithMaxInputSize(cfg.Input.MaxSize),
		)

		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting NovaPay server", "addr", srv.Addr, "store", cfg.Store.Driver)
			serverErrors <- srv.ListenAndServe()
		}()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-sigCtx.Done():
			logger.Info("shutting down", "signal", sigCtx.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
}
