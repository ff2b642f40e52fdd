package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/playgenz/livescore/internal/cache"
	"github.com/playgenz/livescore/internal/config"
	"github.com/playgenz/livescore/internal/consumer"
	"github.com/playgenz/livescore/internal/dedup"
	"github.com/playgenz/livescore/internal/engine"
	"github.com/playgenz/livescore/internal/metrics"
	"github.com/playgenz/livescore/internal/publisher"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "scoring-engine")
	slog.SetDefault(logger)
	logger.Info("starting scoring engine")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "addr", cfg.Redis.URL, "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis", "addr", cfg.Redis.URL)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	states := cache.NewRedisCache(redisClient, cfg.Engine.LiveTTL, cfg.Engine.FinalTTL)
	eng := engine.New(states, otel.Tracer("scoring-engine"), logger)

	source := consumer.NewStreamConsumer(redisClient, cfg.Stream.ConsumerID, cfg.Stream.ConsumerGroup,
		consumer.WithBatchSize(cfg.Engine.BatchSize))
	processor := engine.NewProcessor(
		source,
		cfg.Stream.IntentsStream,
		eng,
		publisher.NewStreamPublisher(redisClient, cfg.Stream.IntentsStream, cfg.Stream.DeltasStream),
		dedup.NewDeduplicator(redisClient, cfg.Engine.DedupTTL),
		m,
		logger,
	)

	go func() {
		if err := processor.Start(ctx); err != nil {
			logger.Error("processor stopped", "error", err)
			cancel()
		}
	}()

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","service":"scoring-engine"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              cfg.Engine.MetricsAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", "addr", cfg.Engine.MetricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
			cancel()
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", "error", err)
	}

	redisClient.Close()
	logger.Info("shutdown complete")
}
