package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	awspkg "github.com/sumasri3003/Smart-Inventory-Project/backend/pkg/aws"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/auth"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/database"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/queue"
)

const (
	AuthStoreStatic = "static"
	AuthStoreDynamo = "dynamo"
)

// Config holds all configuration for the inventory-service.
type Config struct {
	Port        string // Service port (default: 8084)
	Environment string // "production" switches to JSON logs

	DB database.Config

	JWTSecret string
	TokenTTL  time.Duration
	AuthStore string // static or dynamo
	AuthUsers string // user:password:role,... for the static store
	AuthTable string // DynamoDB table for the dynamo store

	QueueDriver       string
	OrdersQueue       string
	ConfirmationQueue string
	KafkaBrokers      []string
	SNSTopicArn       string

	CloudWatchEnabled bool
	MetricsNamespace  string
	LogGroup          string

	AllowedOrigins string
	RateLimit      float64
	RateBurst      int
}

// LoadConfig loads .env (when present) and environment variables into Config.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8084"),
		Environment:       getEnv("APP_ENV", "development"),
		DB:                database.ConfigFromEnv(),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		TokenTTL:          getDuration("JWT_TTL", auth.DefaultTokenTTL),
		AuthStore:         strings.ToLower(getEnv("AUTH_STORE", AuthStoreStatic)),
		AuthUsers:         os.Getenv("AUTH_USERS"),
		AuthTable:         getEnv("DDB_TABLE_USERS", "InventoryUsers"),
		QueueDriver:       getEnv("QUEUE_DRIVER", queue.DriverSQS),
		OrdersQueue:       getEnv("ORDERS_QUEUE", queue.OrdersQueue),
		ConfirmationQueue: getEnv("CONFIRMATION_QUEUE", queue.ConfirmationQueue),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		SNSTopicArn:       os.Getenv("SNS_TOPIC_ARN"),
		CloudWatchEnabled: getBool("CLOUDWATCH_ENABLED", false),
		MetricsNamespace:  getEnv("CLOUDWATCH_NAMESPACE", awspkg.DefaultNamespace),
		LogGroup:          getEnv("CLOUDWATCH_LOG_GROUP", "/smart-inventory/inventory-service"),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		RateLimit:         getFloat("RATE_LIMIT_RPS", 10),
		RateBurst:         getInt("RATE_LIMIT_BURST", 20),
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := awspkg.LoadAWSConfig(context.Background()); err == nil {
			sm := awspkg.NewSecretsClient(awsCfg)
			ctx := context.Background()

			if creds, err := sm.GetSecretMap(ctx, "inventory/DB_CREDENTIALS"); err == nil {
				cfg.DB.Override(creds)
			}
			if jwt, err := sm.GetSecret(ctx, "inventory/JWT_SECRET"); err == nil && jwt != "" {
				cfg.JWTSecret = jwt
			}
			if users, err := sm.GetSecret(ctx, "inventory/AUTH_USERS"); err == nil && users != "" {
				cfg.AuthUsers = users
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.AuthStore {
	case AuthStoreStatic:
		if cfg.AuthUsers == "" {
			return fmt.Errorf("AUTH_USERS is required for the static auth store")
		}
	case AuthStoreDynamo:
	default:
		return fmt.Errorf("unknown AUTH_STORE %q", cfg.AuthStore)
	}
	if cfg.QueueDriver == queue.DriverKafka && len(cfg.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required for the kafka queue driver")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
