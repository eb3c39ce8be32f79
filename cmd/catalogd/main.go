// Command catalogd serves the in-memory catalog over HTTP.
//
// At startup it optionally bulk-loads books from PostgreSQL and restores
// hidden subject and author filters from Redis. While running it consumes
// BookEvents from Kafka and applies filter changes made through the API.
//
// Usage:
//
//	go run ./cmd/catalogd [-config configs/development.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/api"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/books"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/filterstore"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/ingestion/consumer"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/service"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting catalog service",
		"port", cfg.Server.Port,
		"filter_policy", cfg.Filters.Policy,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownMetrics(shutdownCtx)
		}()
	}

	engine := catalog.NewEngine(
		catalog.WithPolicy(catalog.ParsePolicy(cfg.Filters.Policy)),
		catalog.WithInvalidFilterHook(service.InvalidFilterCounter(m)),
	)

	checker := health.NewChecker(5 * time.Second)
	checker.Register("catalog", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d entries", engine.Len()),
		}
	})

	var store service.FilterStore
	if cfg.Filters.Persist {
		redisClient, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, filters will not persist", "error", err)
		} else {
			defer redisClient.Close()
			store = filterstore.New(redisClient, "")
			checker.Register("redis", health.Ping(redisClient.Ping, true))
			slog.Info("filter persistence enabled", "addr", cfg.Redis.Addr)
		}
	}
	svc := service.New(engine, store, m)
	applied := books.NewIDSet()

	if cfg.Loader.Enabled {
		db, err := resilience.Do(ctx, "postgres connect", resilience.RetryConfig{
			MaxAttempts:  5,
			InitialDelay: 500 * time.Millisecond,
		}, func() (*postgres.Client, error) {
			return postgres.New(cfg.Postgres)
		})
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		checker.Register("postgres", health.Ping(db.Ping, true))

		repo := books.NewRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure books schema", "error", err)
			os.Exit(1)
		}
		start := time.Now()
		n, err := repo.LoadInto(ctx, svc.Source("postgres"), applied)
		if err != nil {
			slog.Error("failed to load catalog", "error", err)
			os.Exit(1)
		}
		slog.Info("catalog loaded from postgres", "books", n, "duration", time.Since(start))
	}

	if err := svc.Restore(ctx); err != nil {
		slog.Warn("failed to restore filters", "error", err)
	}

	h := api.New(svc, cfg.Search.DefaultLimit, cfg.Search.MaxResults)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(h, checker, m, cfg.Server.WriteTimeout),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 {
		kc := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CatalogIngest, consumer.HandleMessage(svc.Source("kafka"), applied))
		bc := consumer.New(kc)
		g.Go(func() error {
			return bc.Start(gctx)
		})
		slog.Info("book consumer enabled", "topic", cfg.Kafka.Topics.CatalogIngest)
	}

	g.Go(func() error {
		slog.Info("catalog service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("catalog service error", "error", err)
		os.Exit(1)
	}
	slog.Info("catalog service stopped")
}
