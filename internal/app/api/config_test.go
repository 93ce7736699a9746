package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "DATABASE_DRIVER", "DATABASE_DSN", "POSTGRES_DSN", "SQLITE_PATH", "DATABASE_DEBUG",
	"REDIS_ADDR", "BASKET_STORE", "BASKET_TTL_MINUTES", "BASKET_PURGE_INTERVAL_MINUTES",
	"REPORT_TIMEZONE", "TEMPORAL_ENABLED", "TEMPORAL_ADDRESS", "TEMPORAL_NAMESPACE",
	"TEMPORAL_TASK_QUEUE", "SHUTDOWN_TIMEOUT_SECONDS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.DatabaseDriver)
	assert.Equal(t, BasketStoreMemory, cfg.BasketStore)
	assert.Equal(t, 30*time.Minute, cfg.BasketTTL)
	assert.Equal(t, 5*time.Minute, cfg.BasketPurgeInterval)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.UTC, cfg.ReportLocation)
	assert.False(t, cfg.TemporalEnabled)
	assert.Equal(t, "ORDER_COMMIT", cfg.TemporalTaskQueue)
}

func TestLoadConfigDerivesBackends(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_DSN", "postgres://localhost/store")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "postgres://localhost/store", cfg.DatabaseDSN)
	assert.Equal(t, BasketStoreDatabase, cfg.BasketStore)

	t.Setenv("REDIS_ADDR", "localhost:6379")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BasketStoreRedis, cfg.BasketStore)

	clearEnv(t)
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/store.db")
	t.Setenv("BASKET_STORE", "postgres")
	t.Setenv("TEMPORAL_ENABLED", "yes")
	t.Setenv("REPORT_TIMEZONE", "Europe/Moscow")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "/tmp/store.db", cfg.DatabaseConfig().DSN)
	assert.Equal(t, BasketStoreDatabase, cfg.BasketStore)
	assert.True(t, cfg.TemporalEnabled)
	assert.Equal(t, "Europe/Moscow", cfg.ReportLocation.String())
}

func TestLoadConfigFailsFast(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port", map[string]string{"PORT": "http"}},
		{"driver", map[string]string{"DATABASE_DRIVER": "mysql"}},
		{"postgres without dsn", map[string]string{"DATABASE_DRIVER": "postgres"}},
		{"basket store", map[string]string{"BASKET_STORE": "disk"}},
		{"redis without addr", map[string]string{"BASKET_STORE": "redis"}},
		{"database baskets without database", map[string]string{"BASKET_STORE": "database"}},
		{"ttl", map[string]string{"BASKET_TTL_MINUTES": "0"}},
		{"purge interval", map[string]string{"BASKET_PURGE_INTERVAL_MINUTES": "often"}},
		{"shutdown", map[string]string{"SHUTDOWN_TIMEOUT_SECONDS": "-1"}},
		{"timezone", map[string]string{"REPORT_TIMEZONE": "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", " YES "} {
		assert.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "0", "no", "off"} {
		assert.False(t, isTruthy(v), v)
	}
}
