// Command api runs the catalog HTTP server: a Postgres-backed product
// catalog behind the read cache, plus payment and coupon endpoints.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/lib/pq"

	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/internal/config"
	"github.com/goliatone/go-catalog-cache/internal/httpapi"
	"github.com/goliatone/go-catalog-cache/payment"
	"github.com/goliatone/go-catalog-cache/pkg/di"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		zap.NewExample().Error("failed to load configuration", zap.Error(err))
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to open database", zap.Error(err))
		return err
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx := context.Background()
	store := catalog.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		logger.Error("failed to migrate products", zap.Error(err))
		return err
	}
	coupons := payment.NewCouponStore(db)
	if err := coupons.Migrate(ctx); err != nil {
		logger.Error("failed to migrate coupons", zap.Error(err))
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	container, err := di.NewContainer(store, cfg.CacheConfig(), di.Options{
		Logger:     logger,
		Registerer: registry,
	})
	if err != nil {
		logger.Error("failed to build cache stack", zap.Error(err))
		return err
	}

	payments := payment.NewService(store, coupons, payment.OfflineGateway{}, logger)
	handlers := httpapi.NewHandlers(container.Engine(), store, payments, coupons, logger)

	root := chi.NewRouter()
	root.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	root.Mount("/", httpapi.Router(handlers, cfg.Server.AllowedOrigins))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			return err
		}
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
			return err
		}
	}

	return nil
}

func newLogger(cfg config.Logging) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
