package config

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Name: "logistics-api", Environment: "test"},
		Database: DatabaseConfig{Host: "localhost", Name: "logistics", MaxConnections: 10, MinConnections: 2},
		Redis:    RedisConfig{PoolSize: 10},
		Asynq:    AsynqConfig{Queues: map[string]int{"critical": 6, "default": 3}},
		Storage:  StorageConfig{Driver: StoragePostgres},
		Locking:  LockingConfig{Driver: LockingRedis, TTL: 10 * time.Second},
		Notifications: NotificationsConfig{
			Queue: "critical",
		},
		Secrets:  SecretsConfig{Provider: "env"},
		Security: SecurityConfig{RateLimitRequests: 100},
		Server:   ServerConfig{Port: "8080"},
	}
}

func TestBasicValidator(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "memory_storage_skips_database", mutate: func(c *Config) {
			c.Storage.Driver = StorageMemory
			c.Database = DatabaseConfig{}
		}},
		{name: "missing_port", mutate: func(c *Config) { c.Server.Port = "" }, errorMsg: "Server.Port"},
		{name: "unknown_storage", mutate: func(c *Config) { c.Storage.Driver = "mongo" }, errorMsg: "unknown storage driver"},
		{name: "unknown_lock_driver", mutate: func(c *Config) { c.Locking.Driver = "etcd" }, errorMsg: "unknown lock driver"},
		{name: "relative_gateway_url", mutate: func(c *Config) { c.Notifications.PushGatewayURL = "/push" }, errorMsg: "not an absolute url"},
		{name: "unserved_notify_queue", mutate: func(c *Config) { c.Notifications.Queue = "low" }, errorMsg: "not served"},
		{name: "pool_bounds", mutate: func(c *Config) { c.Database.MinConnections = 20 }, errorMsg: "max_connections"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := (&BasicValidator{}).Validate(cfg)
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestProductionValidator(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "production"
	cfg.Database.Password = "logistics_dev"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRequiredConfig))

	cfg.Database.Password = "s3cret"
	cfg.Database.SSLMode = "require"
	cfg.Security.SecureHeaders = true
	cfg.Security.AllowedOrigins = []string{"https://ops.example.com"}
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("LOCK_DRIVER", "local")
	t.Setenv("CACHE_TTL", "45s")
	t.Setenv("ASYNQ_QUEUES", "critical:5, low:1")
	t.Setenv("PUSH_GATEWAY_URL", "https://push.example.com/send")

	cfg, err := Load(testLogger())
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.False(t, cfg.UsesPostgres())
	assert.Equal(t, 45*time.Second, cfg.Cache.TTL)
	assert.Equal(t, map[string]int{"critical": 5, "low": 1}, cfg.Asynq.Queues)
	assert.Equal(t, "https://push.example.com/send", cfg.Notifications.PushGatewayURL)
}

type stubSecrets map[string]string

func (s stubSecrets) GetSecret(_ context.Context, key string) (string, error) { return s[key], nil }
func (s stubSecrets) GetSecrets(_ context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := s[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}
func (s stubSecrets) RefreshSecrets(context.Context) error { return nil }

func TestApplySecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = "from-env"

	err := ApplySecrets(context.Background(), cfg, stubSecrets{SecretPushToken: "tok"})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "tok", cfg.Notifications.PushToken)
}

func TestParseQueues(t *testing.T) {
	assert.Equal(t, map[string]int{"default": 1}, parseQueues("garbage"))
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, parseQueues("a:2,b:1,c"))
}
