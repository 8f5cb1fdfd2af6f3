package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()
	require.Equal(t, BackendMemory, cfg.StoreBackend)
	require.Equal(t, ":5000", cfg.HTTPAddress)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, []string{"gym_member_events", "gym_training_events"}, cfg.ConsumerTopics)
	require.Empty(t, cfg.RedisAddr)
	require.False(t, cfg.AuthEnabled)
	require.Equal(t, 10*time.Minute, cfg.CacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("OUTBOX_ENABLED", "true")
	t.Setenv("OUTBOX_BATCH_SIZE", "50")
	t.Setenv("DLQ_BASE_DELAY", "5s")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()
	require.Equal(t, BackendPostgres, cfg.StoreBackend)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.OutboxEnabled)
	require.Equal(t, 50, cfg.OutboxBatchSize)
	require.Equal(t, 5*time.Second, cfg.DLQBaseDelay)
	require.Equal(t, 0, cfg.RedisDB)
}
