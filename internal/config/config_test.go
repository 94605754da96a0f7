package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DELIVERY_TYPE_ID", "RESTORE_STOCK_ON_CANCEL", "STRICT_STATUS_TRANSITIONS", "ORDER_TIMEOUT", "KAFKA_BROKERS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, int64(2), cfg.DeliveryTypeID)
	assert.False(t, cfg.RestoreStockOnCancel)
	assert.False(t, cfg.StrictStatusTransitions)
	assert.Equal(t, 5*time.Second, cfg.OrderTimeout)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DELIVERY_TYPE_ID", "7")
	t.Setenv("RESTORE_STOCK_ON_CANCEL", "true")
	t.Setenv("ORDER_TIMEOUT", "750ms")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")

	cfg := Load()
	assert.Equal(t, int64(7), cfg.DeliveryTypeID)
	assert.True(t, cfg.RestoreStockOnCancel)
	assert.Equal(t, 750*time.Millisecond, cfg.OrderTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadIgnoresGarbage(t *testing.T) {
	t.Setenv("DELIVERY_TYPE_ID", "delivery")
	t.Setenv("ORDER_TIMEOUT", "-3s")

	cfg := Load()
	assert.Equal(t, int64(2), cfg.DeliveryTypeID)
	assert.Equal(t, 5*time.Second, cfg.OrderTimeout)
}

func TestValidate(t *testing.T) {
	cfg := Config{PostgresDSN: "postgres://x", JWTSecret: "s", DeliveryTypeID: 2}
	require.NoError(t, cfg.Validate())

	cfg.JWTSecret = ""
	cfg.PostgresDSN = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "POSTGRES_DSN")
}
