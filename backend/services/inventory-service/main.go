package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"go.uber.org/zap"

	awspkg "github.com/sumasri3003/Smart-Inventory-Project/backend/pkg/aws"
	ddbpkg "github.com/sumasri3003/Smart-Inventory-Project/backend/pkg/dynamodb"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/auth"
	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/logger"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/middleware"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/controllers"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/database"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/models"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/queue"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/repository"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/routes"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/services"
)

const serviceName = "inventory-service"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Config load failed:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load AWS config:", err)
		os.Exit(1)
	}

	// --- Logging (console, plus CloudWatch Logs when enabled) ---
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

	// --- Storage ---
	db, err := database.ConnectPostgres(cfg.DB, log,
		&models.Supplier{}, &models.Product{}, &models.Warehouse{},
		&models.InventoryRecord{}, &models.Order{}, &models.OrderItem{},
	)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	defer database.Close(db)

	// --- Auth ---
	guard, err := newGuard(cfg, awsCfg)
	if err != nil {
		log.Fatal("Auth setup failed", zap.Error(err))
	}

	// --- Queue ---
	transport, err := queue.New(queue.Options{
		Driver:       cfg.QueueDriver,
		SQS:          awspkg.NewSQSClient(awsCfg, log),
		KafkaBrokers: cfg.KafkaBrokers,
		Logger:       log,
	})
	if err != nil {
		log.Fatal("Queue setup failed", zap.Error(err))
	}
	defer transport.Close()

	// --- Service wiring ---
	catalogService := services.NewCatalogService(repository.NewGormCatalogRepository(db), log)
	orderService := services.NewOrderService(services.OrderDeps{
		Repo:      repository.NewGormOrderRepository(db),
		Publisher: transport,
		SNS:       awspkg.NewSNSClient(awsCfg),
		Metrics:   metricsClient,
		OnPublishFailure: func(ctx context.Context, queueName string, evt models.OrderEvent, err error) {
			logger.For(ctx, log).Warn("Order event parked for replay",
				zap.String("queue", queueName),
				zap.Any("event", evt),
				zap.Error(err),
			)
		},
		Logger: log,
	}, services.OrderServiceConfig{
		OrdersQueue:       cfg.OrdersQueue,
		ConfirmationQueue: cfg.ConfirmationQueue,
		SNSTopicArn:       cfg.SNSTopicArn,
	})

	// --- HTTP router ---
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(metricsClient, serviceName))
	r.Use(middleware.RequestLogger(log))

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst, 10*time.Minute)
	stopSweeper := make(chan struct{})
	go limiter.RunSweeper(stopSweeper)
	r.Use(middleware.RateLimit(limiter))

	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(apperrors.ErrorMiddleware())

	routes.RegisterRoutes(r, guard, routes.Controllers{
		Auth:    controllers.NewAuthController(guard, log),
		Catalog: controllers.NewCatalogController(catalogService),
		Orders:  controllers.NewOrderController(orderService),
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		log.Info("Inventory Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Inventory Service...")
	close(stopSweeper)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Inventory Service stopped gracefully")
}

// newGuard builds the token guard over the configured credential store.
func newGuard(cfg *Config, awsCfg sdkaws.Config) (*auth.Guard, error) {
	var store auth.CredentialStore
	switch cfg.AuthStore {
	case AuthStoreDynamo:
		store = auth.NewDynamoStore(ddbpkg.NewClientFromConfig(awsCfg), cfg.AuthTable)
	default:
		seed, err := auth.ParseSeedUsers(cfg.AuthUsers)
		if err != nil {
			return nil, fmt.Errorf("AUTH_USERS: %w", err)
		}
		store = auth.NewStaticStore(seed, 0)
	}
	return auth.NewGuard(store, cfg.JWTSecret, cfg.TokenTTL)
}
