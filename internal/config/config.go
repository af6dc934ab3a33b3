package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Registry RegistryConfig
	Logging  LogConfig
	Redis    RedisConfig
	Feed     FeedConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// RegistryConfig selects the catalog registry served by this process.
type RegistryConfig struct {
	Name string `envconfig:"REGISTRY_NAME" default:"default"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RedisConfig holds the Redis connection used by the price feed.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	PoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"20"`
}

// FeedConfig controls the price change feed.
type FeedConfig struct {
	Enabled        bool          `envconfig:"FEED_ENABLED" default:"false"`
	Interval       time.Duration `envconfig:"FEED_INTERVAL" default:"1s"`
	Workers        int           `envconfig:"FEED_WORKERS" default:"4"`
	QueueSize      int           `envconfig:"FEED_QUEUE_SIZE" default:"1000"`
	Channel        string        `envconfig:"FEED_CHANNEL" default:"catalog:prices"`
	IdempotencyTTL time.Duration `envconfig:"FEED_IDEMPOTENCY_TTL" default:"24h"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Registry: RegistryConfig{
			Name: "default",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 20,
		},
		Feed: FeedConfig{
			Enabled:        false,
			Interval:       time.Second,
			Workers:        4,
			QueueSize:      1000,
			Channel:        "catalog:prices",
			IdempotencyTTL: 24 * time.Hour,
		},
	}
}
