// Package config loads the service settings from the environment with viper.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers for the collection snapshots.
const (
	StorageDatabase = "database"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

// Catalog drivers.
const (
	CatalogHTTP  = "http"
	CatalogLocal = "local"
)

// Config holds the settings of the storefront service.
type Config struct {
	AppPort   string
	JWTSecret string

	StorageDriver  string
	DatabaseDriver string
	DatabaseDSN    string
	RedisURL       string

	RabbitMQURL       string
	NotificationQueue string
	FeedSize          int

	CatalogDriver  string
	CatalogBaseURL string
	CatalogTimeout time.Duration

	CheckoutDelay         time.Duration
	NotifyMissingRemovals bool
}

// Load reads the configuration from environment variables and, when
// CONFIG_FILE is set, from that file first.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("STORAGE_DRIVER", StorageDatabase)
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("NOTIFICATION_QUEUE", "storefront_notifications")
	v.SetDefault("NOTIFICATION_FEED_SIZE", 50)
	v.SetDefault("CATALOG_DRIVER", CatalogHTTP)
	v.SetDefault("CATALOG_BASE_URL", "https://api.escuelajs.co/api/v1")
	v.SetDefault("CATALOG_TIMEOUT", "10s")
	v.SetDefault("CHECKOUT_DELAY", "2s")
	v.SetDefault("NOTIFY_MISSING_REMOVALS", true)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
		log.Printf("Loaded configuration from %s", v.ConfigFileUsed())
	}

	cfg := Config{
		AppPort:               v.GetString("APP_PORT"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		StorageDriver:         v.GetString("STORAGE_DRIVER"),
		DatabaseDriver:        v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:           v.GetString("DATABASE_DSN"),
		RedisURL:              v.GetString("REDIS_URL"),
		RabbitMQURL:           v.GetString("RABBITMQ_URL"),
		NotificationQueue:     v.GetString("NOTIFICATION_QUEUE"),
		FeedSize:              v.GetInt("NOTIFICATION_FEED_SIZE"),
		CatalogDriver:         v.GetString("CATALOG_DRIVER"),
		CatalogBaseURL:        v.GetString("CATALOG_BASE_URL"),
		CatalogTimeout:        v.GetDuration("CATALOG_TIMEOUT"),
		CheckoutDelay:         v.GetDuration("CHECKOUT_DELAY"),
		NotifyMissingRemovals: v.GetBool("NOTIFY_MISSING_REMOVALS"),
	}
	return cfg, cfg.Validate()
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDatabase, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.CatalogDriver {
	case CatalogHTTP, CatalogLocal:
	default:
		return fmt.Errorf("unknown CATALOG_DRIVER %q", c.CatalogDriver)
	}
	if c.CheckoutDelay < 0 {
		return fmt.Errorf("CHECKOUT_DELAY must not be negative")
	}
	return nil
}
