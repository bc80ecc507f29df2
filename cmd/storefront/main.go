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

	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/api"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx"
	"github.com/jcmexdev/storefront/internal/storefront/session"
	"github.com/jcmexdev/storefront/internal/storefront/view"
)

func main() {
	if err := run(); err != nil {
		slog.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := telemetry.InitLogger(os.Stderr, cfg.ServiceName, telemetry.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName)
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

	tmpl, err := view.LoadTemplates()
	if err != nil {
		return err
	}

	var catalogCache cache.Cache = cache.NewMemory("storefront")
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, "storefront")
		defer redisCache.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			// reads and writes fail soft, the catalog is fetched each time
			logger.Warn("redis unreachable", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
		catalogCache = redisCache
	}

	client := api.NewClient(api.Config{
		BaseURL:    cfg.ShopAPIURL,
		CDN:        cfg.CDNURL,
		Cache:      catalogCache,
		CatalogTTL: cfg.CatalogTTL,
		Logger:     logger,
	})

	sessions := session.NewRegistry(session.Deps{
		Templates:      tmpl,
		API:            client,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	}, cfg.SessionTTL)

	handler := httpx.NewHandler(sessions, cfg.RequestTimeout, logger)
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpx.NewRouter(handler, sessions, httpx.RouterConfig{
			SessionTTL:   cfg.SessionTTL,
			SecureCookie: cfg.SecureCookie,
		}),
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("storefront running", "addr", cfg.Addr, "shop_api", cfg.ShopAPIURL, "redis", cfg.RedisAddr != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessions.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
