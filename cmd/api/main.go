package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/offgriddoc/cablebuilder/api/routes"
	"github.com/offgriddoc/cablebuilder/internal/builder"
	"github.com/offgriddoc/cablebuilder/internal/checkout"
	"github.com/offgriddoc/cablebuilder/internal/pricing"
	"github.com/offgriddoc/cablebuilder/pkg/config"
	"github.com/offgriddoc/cablebuilder/pkg/instance"
	"github.com/offgriddoc/cablebuilder/pkg/logger"
	"github.com/offgriddoc/cablebuilder/pkg/metrics"
	"github.com/offgriddoc/cablebuilder/pkg/redis"
	"github.com/offgriddoc/cablebuilder/pkg/shopify"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, add-to-cart replay disabled")
	}

	shopifyClient, err := shopify.NewClient(cfg.Shopify)
	if err != nil {
		logg.Error(context.Background(), "failed to create shopify client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	resolver, err := pricing.NewResolver(pricing.ResolverParams{
		Catalog:      pricing.NewShopifyCatalog(shopifyClient, shopifyClient),
		Cache:        pricing.NewCache(cfg.Pricing.CacheTTL),
		Metrics:      metrics.NewPricingMetrics(registry),
		Logger:       logg,
		FuzzyLimit:   cfg.Pricing.FuzzyLimit,
		Concurrency:  cfg.Pricing.Concurrency,
		BatchTimeout: cfg.Pricing.BatchTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create price resolver", err)
		os.Exit(1)
	}

	sessions, err := builder.NewSessions(resolver, cfg.Pricing.Tax(), cfg.Pricing.SessionIdleTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create builder sessions", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(shopifyClient, shopifyClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"shop":     cfg.Shopify.ShopDomain,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, redisClient, resolver, checkoutService, sessions, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}
