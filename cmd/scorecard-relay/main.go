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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/playgenz/livescore/internal/cache"
	"github.com/playgenz/livescore/internal/config"
	"github.com/playgenz/livescore/internal/consumer"
	"github.com/playgenz/livescore/internal/handlers"
	"github.com/playgenz/livescore/internal/hub"
	"github.com/playgenz/livescore/internal/metrics"
	"github.com/playgenz/livescore/internal/publisher"
	"github.com/playgenz/livescore/internal/registry"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "scorecard-relay")
	slog.SetDefault(logger)
	logger.Info("starting scorecard relay")

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

	// Create hub
	h := hub.NewHub(m, logger)
	go h.Run(ctx)

	// Every relay sees every delta, so each gets its own group starting at the tail
	deltas := consumer.NewStreamConsumer(redisClient, cfg.Stream.ConsumerID, "scorecard-relay-"+cfg.Stream.ConsumerID,
		consumer.FromLatest())
	go deltas.ForwardDeltas(ctx, cfg.Stream.DeltasStream, h, logger)

	// Create HTTP handler (pass context for WebSocket lifecycle)
	handler := handlers.NewHandler(ctx, handlers.Deps{
		Hub:              h,
		Scorecards:       cache.NewRedisCache(redisClient, cfg.Engine.LiveTTL, cfg.Engine.FinalTTL),
		Registry:         registry.New(),
		Sink:             publisher.NewStreamPublisher(redisClient, cfg.Stream.IntentsStream, cfg.Stream.DeltasStream),
		Gatherer:         reg,
		Metrics:          m,
		Logger:           logger,
		IntentsPerSecond: cfg.Relay.IntentsPerSecond,
		IntentBurst:      cfg.Relay.IntentBurst,
		AllowedOrigins:   cfg.Relay.AllowedOrigins,
	})

	// Start HTTP server
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("websocket server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")

	// Cancel context to stop all goroutines
	cancel()

	// Graceful shutdown of HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", "error", err)
	}

	// Close Redis connection
	redisClient.Close()

	logger.Info("shutdown complete")
}
