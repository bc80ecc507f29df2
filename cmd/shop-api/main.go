package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront/internal/shop-api/app"
	"github.com/jcmexdev/storefront/internal/shop-api/domain"
	"github.com/jcmexdev/storefront/internal/shop-api/infra/httpx"
	"github.com/jcmexdev/storefront/internal/shop-api/orderlog/sqlite"
)

func main() {
	logger := telemetry.InitLogger(os.Stderr, getEnv("OTEL_SERVICE_NAME", "shop-api"), telemetry.ParseLevel(os.Getenv("LOG_LEVEL")))

	if err := run(logger); err != nil {
		logger.Error("shop-api stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "shop-api"))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	catalog, err := domain.LoadCatalog()
	if err != nil {
		return err
	}

	dbPath := getEnv("ORDER_DB_PATH", "./data/orders.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}
	journal, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer journal.Close()

	svc := app.NewService(catalog, journal, logger)
	addr := getEnv("SHOP_API_ADDR", ":8081")
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpx.NewRouter(httpx.NewHandler(svc, logger)),
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("shop-api running", "addr", addr, "db", dbPath, "products", len(catalog.Products()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
