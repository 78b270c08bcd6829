// Command residentd serves the neighborhood residency records over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"residency/internal/auth"
	"residency/internal/config"
	"residency/internal/core"
	"residency/internal/httpapi"
	"residency/internal/infra/persistence"
	"residency/internal/platform/httpserver"
	"residency/internal/platform/logger"
	"residency/internal/seed"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("residentd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	adapter, err := persistence.Open(ctx, cfg.Persistence())
	if err != nil {
		return err
	}
	defer func() {
		if err := adapter.Close(); err != nil {
			log.Warn("closing storage", "error", err)
		}
	}()

	store := core.NewStore(adapter)
	loaded, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if cfg.SeedOnEmpty {
		seeded, err := seed.IfEmpty(ctx, store, loaded)
		if err != nil {
			return err
		}
		if seeded {
			log.Info("seeded starter dataset", "driver", cfg.Driver)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	svc := core.NewService(store,
		core.WithLogger(log),
		core.WithMetricsRecorder(core.NewPrometheusMetricsRecorder(registry)),
		core.WithTracer(core.NewOTelTracer(nil)),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Service:    svc,
		Tokens:     auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL),
		Logger:     log,
		Gatherer:   registry,
		LoginLimit: cfg.LoginLimit(),
		LoginBurst: cfg.LoginBurst,
		TrustProxy: cfg.TrustProxy,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting residentd", "addr", cfg.Addr, "driver", cfg.Driver, "loaded", loaded)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
