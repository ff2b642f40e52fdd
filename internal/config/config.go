package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
	Redis  RedisConfig  `yaml:"redis" toml:"redis"`
	Stream StreamConfig `yaml:"stream" toml:"stream"`
	Engine EngineConfig `yaml:"engine" toml:"engine"`
	Relay  RelayConfig  `yaml:"relay" toml:"relay"`
	Client ClientConfig `yaml:"client" toml:"client"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URL      string `yaml:"url" toml:"url"`
	Password string `yaml:"password" toml:"password"`
}

// StreamConfig defines the Redis streams shared by the relay and the engine
type StreamConfig struct {
	IntentsStream string `yaml:"intents_stream" toml:"intents_stream"`
	DeltasStream  string `yaml:"deltas_stream" toml:"deltas_stream"`

	// Consumer group and ID
	ConsumerGroup string `yaml:"consumer_group" toml:"consumer_group"`
	ConsumerID    string `yaml:"consumer_id" toml:"consumer_id"`
}

// EngineConfig holds scoring engine settings
type EngineConfig struct {
	DedupTTL  time.Duration `yaml:"dedup_ttl" toml:"dedup_ttl"`
	LiveTTL   time.Duration `yaml:"live_ttl" toml:"live_ttl"`
	FinalTTL  time.Duration `yaml:"final_ttl" toml:"final_ttl"`
	BatchSize int64         `yaml:"batch_size" toml:"batch_size"`

	// MetricsAddr serves /metrics and /health for the engine
	MetricsAddr string `yaml:"metrics_addr" toml:"metrics_addr"`
}

// RelayConfig holds per-connection limits for the websocket relay
type RelayConfig struct {
	IntentsPerSecond float64  `yaml:"intents_per_second" toml:"intents_per_second"`
	IntentBurst      int      `yaml:"intent_burst" toml:"intent_burst"`
	AllowedOrigins   []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

// ClientConfig holds settings for the scorer console
type ClientConfig struct {
	RelayURL        string `yaml:"relay_url" toml:"relay_url"`
	APIURL          string `yaml:"api_url" toml:"api_url"`
	WebhookURL      string `yaml:"webhook_url" toml:"webhook_url"`
	WebhookPerMin   int    `yaml:"webhook_per_minute" toml:"webhook_per_minute"`
	HistoryCapacity int    `yaml:"history_capacity" toml:"history_capacity"`
}

// Default returns a configuration populated with local development defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Redis:  RedisConfig{URL: "localhost:6379"},
		Stream: StreamConfig{
			IntentsStream: "scorecard.intents",
			DeltasStream:  "scorecard.deltas",
			ConsumerGroup: "scoring-engine",
			ConsumerID:    "engine-1",
		},
		Engine: EngineConfig{
			DedupTTL:    10 * time.Minute,
			LiveTTL:     2 * time.Hour,
			FinalTTL:    6 * time.Hour,
			BatchSize:   10,
			MetricsAddr: ":9091",
		},
		Relay: RelayConfig{
			IntentsPerSecond: 5,
			IntentBurst:      10,
			AllowedOrigins:   []string{"*"},
		},
		Client: ClientConfig{
			RelayURL:        "http://localhost:8080",
			APIURL:          "http://localhost:8080",
			WebhookPerMin:   20,
			HistoryCapacity: 50,
		},
	}
}

// LoadConfig loads the configuration from a YAML or, by extension, TOML file.
// A missing file falls back to defaults; environment variables override either.
// A .env file in the working directory is loaded first when present.
func LoadConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case err == nil:
			if err := unmarshal(filename, data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func unmarshal(filename string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) error {
	cfg.Server.Addr = getEnv("SERVER_ADDR", cfg.Server.Addr)
	cfg.Redis.URL = getEnv("REDIS_URL", cfg.Redis.URL)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)

	cfg.Stream.IntentsStream = getEnv("INTENTS_STREAM", cfg.Stream.IntentsStream)
	cfg.Stream.DeltasStream = getEnv("DELTAS_STREAM", cfg.Stream.DeltasStream)
	cfg.Stream.ConsumerGroup = getEnv("CONSUMER_GROUP", cfg.Stream.ConsumerGroup)
	cfg.Stream.ConsumerID = getEnv("CONSUMER_ID", cfg.Stream.ConsumerID)

	cfg.Engine.MetricsAddr = getEnv("ENGINE_METRICS_ADDR", cfg.Engine.MetricsAddr)
	if v := os.Getenv("DEDUP_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DEDUP_TTL value: %w", err)
		}
		cfg.Engine.DedupTTL = d
	}
	if v := os.Getenv("ENGINE_BATCH_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ENGINE_BATCH_SIZE value: %w", err)
		}
		cfg.Engine.BatchSize = n
	}
	if v := os.Getenv("RELAY_INTENTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RELAY_INTENTS_PER_SECOND value: %w", err)
		}
		cfg.Relay.IntentsPerSecond = f
	}

	cfg.Client.RelayURL = getEnv("RELAY_URL", cfg.Client.RelayURL)
	cfg.Client.APIURL = getEnv("API_URL", cfg.Client.APIURL)
	cfg.Client.WebhookURL = getEnv("WEBHOOK_URL", cfg.Client.WebhookURL)
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
