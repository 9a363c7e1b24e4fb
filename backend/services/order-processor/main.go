package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	awspkg "github.com/sumasri3003/Smart-Inventory-Project/backend/pkg/aws"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/logger"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/database"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/invoice"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/lock"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/queue"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/repository"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/services"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/order-processor/consumer"
)

const serviceName = "order-processor"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Config load failed:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load AWS config:", err)
		os.Exit(1)
	}

	var sink io.Writer
	var sinkErr error
	if cfg.CloudWatchEnabled {
		sink, sinkErr = awspkg.NewCloudWatchLogsWriter(ctx, awsCfg, cfg.LogGroup, serviceName)
		if sinkErr != nil {
			sink = nil
		}
	}
	log, err := logger.New(cfg.Environment, serviceName, sink)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()
	if sinkErr != nil {
		log.Warn("CloudWatch logs writer init failed (non-fatal)", zap.Error(sinkErr))
	}

	metricsClient := awspkg.NewMetricsClient(awsCfg, cfg.MetricsNamespace, cfg.CloudWatchEnabled)

	// --- Storage (schema is owned by inventory-service) ---
	db, err := database.ConnectPostgres(cfg.DB, log)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	defer database.Close(db)

	blobs := awspkg.NewS3Publisher(awspkg.NewS3Client(awsCfg), cfg.InvoiceBucket, awsCfg.Region, cfg.S3PublicBaseURL)
	if err := blobs.EnsureBucket(ctx); err != nil {
		log.Fatal("Invoice bucket unavailable", zap.String("bucket", cfg.InvoiceBucket), zap.Error(err))
	}

	locker := newLocker(ctx, cfg, log)

	sqsClient := awspkg.NewSQSClient(awsCfg, log)
	sqsClient.VisibilityTimeout = cfg.VisibilityTimeout(sqsClient.MaxMessages)

	transport, err := queue.New(queue.Options{
		Driver:       cfg.QueueDriver,
		SQS:          sqsClient,
		KafkaBrokers: cfg.KafkaBrokers,
		KafkaGroupID: cfg.KafkaGroupID,
		Logger:       log,
	})
	if err != nil {
		log.Fatal("Queue setup failed", zap.Error(err))
	}
	defer transport.Close()

	deps := services.OrderDeps{
		Repo:      repository.NewGormOrderRepository(db),
		Publisher: transport,
		Blob:      blobs,
		Invoices:  invoice.NewGenerator(cfg.Invoice),
		Metrics:   metricsClient,
		Logger:    log,
	}
	if locker != nil {
		deps.Locker = locker
	}
	orderService := services.NewOrderService(deps, services.OrderServiceConfig{
		OrdersQueue:       cfg.OrdersQueue,
		ConfirmationQueue: cfg.ConfirmationQueue,
		StepTimeout:       cfg.StepTimeout,
		AutoConfirm:       cfg.AutoConfirm,
	})
	handlers := consumer.NewHandlers(orderService, metricsClient, log)

	// --- Health ---
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	srv := &http.Server{Addr: ":" + cfg.HealthPort, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Health listener failed", zap.Error(err))
		}
	}()

	// --- Consumers ---
	done := make(chan error, 1)
	go func() {
		log.Info("Order processor starting",
			zap.String("driver", cfg.QueueDriver),
			zap.Bool("auto_confirm", cfg.AutoConfirm),
			zap.Bool("locking", locker != nil),
		)
		done <- consumer.Run(ctx, transport, log,
			consumer.Subscription{Queue: cfg.OrdersQueue, Handler: handlers.Intake},
			consumer.Subscription{Queue: cfg.ConfirmationQueue, Handler: handlers.Confirmation},
		)
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutting down Order Processor...")
		cancel()
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Consumer stopped with error", zap.Error(err))
		}
	case err := <-done:
		if err != nil {
			log.Error("Consumer failed", zap.Error(err))
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Health listener forced to shutdown", zap.Error(err))
	}

	log.Info("Order Processor stopped gracefully")
}

// newLocker returns the Redis confirmation lock, or nil when Redis is not
// configured or unreachable at startup.
func newLocker(ctx context.Context, cfg *Config, log *zap.Logger) *lock.RedisLock {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		log.Warn("Redis unavailable, confirming without lock", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	return lock.NewRedisLock(client, "order-confirm:", cfg.LockTTL)
}
