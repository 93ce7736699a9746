package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"go.temporal.io/sdk/client"

	orderworkflows "github.com/Apurer/storekeeper/internal/durable/temporal/workflows/orders"
	"github.com/Apurer/storekeeper/internal/platform/database"
)

// Storage backends selectable through DATABASE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = database.DriverPostgres
	DriverSQLite   = database.DriverSQLite
)

// Basket session backends selectable through BASKET_STORE.
const (
	BasketStoreMemory   = "memory"
	BasketStoreDatabase = "database"
	BasketStoreRedis    = "redis"
)

// Config carries environment-driven settings for the API, worker, and purger processes.
type Config struct {
	Port                string
	DatabaseDriver      string
	DatabaseDSN         string
	DatabaseDebug       bool
	RedisAddr           string
	BasketStore         string
	BasketTTL           time.Duration
	BasketPurgeInterval time.Duration
	ReportLocation      *time.Location
	TemporalEnabled     bool
	TemporalAddress     string
	TemporalNamespace   string
	TemporalTaskQueue   string
	ShutdownTimeout     time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		DatabaseDSN:       envDefault("DATABASE_DSN", strings.TrimSpace(os.Getenv("POSTGRES_DSN"))),
		DatabaseDebug:     isTruthy(os.Getenv("DATABASE_DEBUG")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		TemporalEnabled:   isTruthy(os.Getenv("TEMPORAL_ENABLED")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalTaskQueue: envDefault("TEMPORAL_TASK_QUEUE", orderworkflows.CommitOrderTaskQueue),
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}

	defaultDriver := DriverMemory
	if cfg.DatabaseDSN != "" {
		defaultDriver = DriverPostgres
	}
	cfg.DatabaseDriver = strings.ToLower(envDefault("DATABASE_DRIVER", defaultDriver))
	switch cfg.DatabaseDriver {
	case DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseDSN == "" {
			return Config{}, fmt.Errorf("DATABASE_DSN (or POSTGRES_DSN) is required when DATABASE_DRIVER=postgres")
		}
	case DriverSQLite:
		if path := strings.TrimSpace(os.Getenv("SQLITE_PATH")); path != "" {
			cfg.DatabaseDSN = path
		}
	default:
		return Config{}, fmt.Errorf("DATABASE_DRIVER must be one of memory, postgres, sqlite, got %q", cfg.DatabaseDriver)
	}

	defaultBaskets := BasketStoreMemory
	switch {
	case cfg.RedisAddr != "":
		defaultBaskets = BasketStoreRedis
	case cfg.DatabaseDriver != DriverMemory:
		defaultBaskets = BasketStoreDatabase
	}
	cfg.BasketStore = strings.ToLower(envDefault("BASKET_STORE", defaultBaskets))
	switch cfg.BasketStore {
	case "postgres", "sqlite":
		cfg.BasketStore = BasketStoreDatabase
	}
	switch cfg.BasketStore {
	case BasketStoreMemory:
	case BasketStoreDatabase:
		if cfg.DatabaseDriver == DriverMemory {
			return Config{}, fmt.Errorf("BASKET_STORE=%s needs DATABASE_DRIVER postgres or sqlite", BasketStoreDatabase)
		}
	case BasketStoreRedis:
		if cfg.RedisAddr == "" {
			return Config{}, fmt.Errorf("REDIS_ADDR is required when BASKET_STORE=redis")
		}
	default:
		return Config{}, fmt.Errorf("BASKET_STORE must be one of memory, database, redis, got %q", cfg.BasketStore)
	}

	var err error
	if cfg.BasketTTL, err = minutesFromEnv("BASKET_TTL_MINUTES", 30); err != nil {
		return Config{}, err
	}
	if cfg.BasketPurgeInterval, err = minutesFromEnv("BASKET_PURGE_INTERVAL_MINUTES", 5); err != nil {
		return Config{}, err
	}
	timeout, err := positiveIntFromEnv("SHUTDOWN_TIMEOUT_SECONDS", 15)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout = time.Duration(timeout) * time.Second

	zone := envDefault("REPORT_TIMEZONE", "UTC")
	if cfg.ReportLocation, err = time.LoadLocation(zone); err != nil {
		return Config{}, fmt.Errorf("REPORT_TIMEZONE %q is not a known time zone: %w", zone, err)
	}
	return cfg, nil
}

// DatabaseConfig returns the connection settings for platform/database.
func (c Config) DatabaseConfig() database.Config {
	return database.Config{Driver: c.DatabaseDriver, DSN: c.DatabaseDSN, Debug: c.DatabaseDebug}
}

func minutesFromEnv(key string, fallback int) (time.Duration, error) {
	minutes, err := positiveIntFromEnv(key, fallback)
	if err != nil {
		return 0, err
	}
	return time.Duration(minutes) * time.Minute, nil
}

func positiveIntFromEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
