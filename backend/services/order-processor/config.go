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
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/database"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/invoice"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/queue"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/services"
)

// Config holds all configuration for the order-processor worker.
type Config struct {
	Environment string
	HealthPort  string

	DB database.Config

	QueueDriver       string
	OrdersQueue       string
	ConfirmationQueue string
	KafkaBrokers      []string
	KafkaGroupID      string
	AutoConfirm       bool

	InvoiceBucket   string
	S3PublicBaseURL string
	Invoice         invoice.Options
	StepTimeout     time.Duration

	RedisAddr     string // empty disables the confirmation lock
	RedisPassword string
	LockTTL       time.Duration

	CloudWatchEnabled bool
	MetricsNamespace  string
	LogGroup          string
}

// LoadConfig loads .env (when present) and environment variables into Config.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	inv := invoice.DefaultOptions()
	stepTimeout := getDuration("CONFIRM_STEP_TIMEOUT", 15*time.Second)
	inv.Organization = getEnv("INVOICE_ORGANIZATION", inv.Organization)
	inv.Contact = getEnv("INVOICE_CONTACT", inv.Contact)
	inv.Currency = getEnv("INVOICE_CURRENCY", inv.Currency)

	cfg := &Config{
		Environment:       getEnv("APP_ENV", "development"),
		HealthPort:        getEnv("HEALTH_PORT", "8085"),
		DB:                database.ConfigFromEnv(),
		QueueDriver:       getEnv("QUEUE_DRIVER", queue.DriverSQS),
		OrdersQueue:       getEnv("ORDERS_QUEUE", queue.OrdersQueue),
		ConfirmationQueue: getEnv("CONFIRMATION_QUEUE", queue.ConfirmationQueue),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "order-processor"),
		AutoConfirm:       getBool("AUTO_CONFIRM", false),
		InvoiceBucket:     getEnv("S3_BUCKET_NAME", "invoices"),
		S3PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", os.Getenv("AWS_ENDPOINT")),
		Invoice:           inv,
		StepTimeout:       stepTimeout,
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		LockTTL:           getDuration("CONFIRM_LOCK_TTL", services.ConfirmSteps*stepTimeout),
		CloudWatchEnabled: getBool("CLOUDWATCH_ENABLED", false),
		MetricsNamespace:  getEnv("CLOUDWATCH_NAMESPACE", awspkg.DefaultNamespace),
		LogGroup:          getEnv("CLOUDWATCH_LOG_GROUP", "/smart-inventory/order-processor"),
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := awspkg.LoadAWSConfig(context.Background()); err == nil {
			sm := awspkg.NewSecretsClient(awsCfg)
			if creds, err := sm.GetSecretMap(context.Background(), "inventory/DB_CREDENTIALS"); err == nil {
				cfg.DB.Override(creds)
			}
			if pw, err := sm.GetSecret(context.Background(), "inventory/REDIS_PASSWORD"); err == nil && pw != "" {
				cfg.RedisPassword = pw
			}
		}
	}

	if cfg.QueueDriver == queue.DriverKafka && len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is required for the kafka queue driver")
	}
	return cfg, nil
}

// maxVisibilityTimeout is the SQS upper bound.
const maxVisibilityTimeout = 12 * time.Hour

// VisibilityTimeout returns, in seconds, how long a received batch stays
// hidden: every message in it may run all confirmation steps in turn.
func (c *Config) VisibilityTimeout(batch int32) int32 {
	if batch < 1 {
		batch = 1
	}
	d := time.Duration(batch)*services.ConfirmSteps*c.StepTimeout + 30*time.Second
	if d > maxVisibilityTimeout {
		d = maxVisibilityTimeout
	}
	return int32(d / time.Second)
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
