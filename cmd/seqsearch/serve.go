package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	dbBolt "github.com/kailas-cloud/seqsearch/internal/db/bolt"
	"github.com/kailas-cloud/seqsearch/internal/metrics"
	chiTransport "github.com/kailas-cloud/seqsearch/internal/transport/chi"
	"github.com/kailas-cloud/seqsearch/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()
	logger, cfg := a.logger, a.cfg

	logger.Info("Starting seqsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Strings("algorithms", a.catalog.Algorithms.Names()),
		zap.Int("corpora", a.catalog.Corpora.Len()),
	)

	// Register metrics explicitly (no init())
	metrics.Register()

	server := chiTransport.NewServer(
		a.search, a.entries, a.health,
		a.catalog.Algorithms, a.catalog.Corpora,
		time.Duration(cfg.Blast.TimeoutSec)*time.Second,
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	// Searches in flight outlive Shutdown only until its deadline; cancelling the
	// base context then terminates their child processes.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		cancelBase()
		if err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
		return nil
	})

	if bolt, ok := a.store.(*dbBolt.Store); ok && cfg.Store.TTLSec > 0 {
		interval := time.Duration(cfg.Store.SweepIntervalSec) * time.Second
		g.Go(func() error {
			return bolt.RunSweeper(gctx, interval, func(n int, err error) {
				if err != nil {
					logger.Warn("Result sweep failed", zap.Error(err))
					return
				}
				if n > 0 {
					logger.Info("Swept expired results", zap.Int("removed", n))
				}
			})
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
