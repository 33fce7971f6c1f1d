package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/Mahaveer86619/mindguide/internal/adapters/http"
	"github.com/Mahaveer86619/mindguide/internal/app/conversation"
	"github.com/Mahaveer86619/mindguide/internal/app/reports"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves the chat API and, when a metrics port is configured, Prometheus metrics on a separate listener.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sink, err := initLogging(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Shutdown() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	di := newInjector(ctx, cfg)
	defer func() {
		if err := di.Shutdown(); err != nil {
			slog.Warn("shutdown finished with errors", "error", err)
		}
	}()

	convSvc, err := do.Invoke[*conversation.Service](di)
	if err != nil {
		return err
	}
	reportsSvc, err := do.Invoke[*reports.Service](di)
	if err != nil {
		return err
	}

	api := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: httpadapter.NewServer(convSvc, reportsSvc, httpadapter.Options{
			RequestTimeout: cfg.Server.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	servers := []*http.Server{api}
	if cfg.Server.MetricsPort != "" {
		reg := do.MustInvoke[*prometheus.Registry](di)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		servers = append(servers, &http.Server{
			Addr:              ":" + cfg.Server.MetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			slog.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("server shutdown failed", "addr", srv.Addr, "error", err)
			}
		}
		return nil
	})

	return g.Wait()
}
