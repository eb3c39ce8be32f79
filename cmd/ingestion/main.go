// Command ingestion starts the book ingestion HTTP service.
//
// The service accepts new books via POST /api/v1/books, validates them,
// optionally persists them to PostgreSQL, and publishes a BookEvent to Kafka
// for running catalog services. It provides a health endpoint at GET /health.
//
// Usage:
//
//	go run ./cmd/ingestion [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/books"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/resilience"
)

// main loads configuration, optionally connects to PostgreSQL, creates the
// Kafka producer, and starts the HTTP server. Graceful shutdown is triggered
// by SIGINT/SIGTERM.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting ingestion service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var writer publisher.BookWriter
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
		repo := books.NewRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure books schema", "error", err)
			os.Exit(1)
		}
		writer = repo
		slog.Info("connected to postgres")
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CatalogIngest)
	defer producer.Close()
	slog.Info("kafka producer initialized", "topic", cfg.Kafka.Topics.CatalogIngest)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownMetrics(shutdownCtx)
		}()
	}

	h := handler.New(publisher.New(writer, producer))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/books", h.Ingest)
	mux.HandleFunc("GET /health", h.Health)

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()
	slog.Info("ingestion service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("ingestion service stopped")
}
