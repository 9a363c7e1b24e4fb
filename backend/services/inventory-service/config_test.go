package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_USE_SECRETS", "")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("AUTH_STORE", "")
	t.Setenv("AUTH_USERS", "admin:admin123:admin")
	t.Setenv("QUEUE_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("PORT", "")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8084", cfg.Port)
	assert.Equal(t, AuthStoreStatic, cfg.AuthStore)
	assert.Equal(t, "sqs", cfg.QueueDriver)
	assert.Equal(t, "orders-queue", cfg.OrdersQueue)
	assert.Equal(t, "order-confirmation-queue", cfg.ConfirmationQueue)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
}

func TestLoadConfig_RequiredValues(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	assert.EqualError(t, err, "JWT_SECRET is required")

	setBaseEnv(t)
	t.Setenv("AUTH_USERS", "")
	_, err = LoadConfig()
	assert.Error(t, err)

	setBaseEnv(t)
	t.Setenv("AUTH_STORE", "ldap")
	_, err = LoadConfig()
	assert.Error(t, err)

	setBaseEnv(t)
	t.Setenv("QUEUE_DRIVER", "kafka")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("AUTH_STORE", "Dynamo")
	t.Setenv("AUTH_USERS", "")
	t.Setenv("QUEUE_DRIVER", "kafka")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("JWT_TTL", "15m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, AuthStoreDynamo, cfg.AuthStore)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
}
