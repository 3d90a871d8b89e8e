package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nusastay/service-rental/internal/application"
	"github.com/nusastay/service-rental/internal/auth"
	"github.com/nusastay/service-rental/internal/config"
	bookingDomain "github.com/nusastay/service-rental/internal/domain/booking"
	"github.com/nusastay/service-rental/internal/events"
	"github.com/nusastay/service-rental/internal/handler"
	"github.com/nusastay/service-rental/internal/logger"
	"github.com/nusastay/service-rental/internal/middleware"
	"github.com/nusastay/service-rental/internal/repository"
	"github.com/nusastay/service-rental/internal/storage"
)

const serviceName = "service-rental"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-rental",
		zap.String("port", cfg.Port),
	)

	// Connect to database and migrate
	db, err := repository.Connect(cfg.DB.DSN(), log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migration completed")

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.TTLHours)*time.Hour,
	)

	// Initialize Kafka producer
	producer := events.NewProducer(cfg.Kafka.Brokers, serviceName, log)
	defer func() { _ = producer.Close() }()

	// Initialize proof storage
	proofStore := storage.NewSupabaseProofStore(
		cfg.Storage.URL,
		cfg.Storage.ServiceKey,
		cfg.Storage.Bucket,
		log,
	)

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)
	serviceRepo := repository.NewGormServiceRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	transactor := repository.NewGormTransactor(db)

	// Initialize domain strategies
	pricing := bookingDomain.NewStandardPricingCalculator()
	overlapPolicy := bookingDomain.NewUnitOverlapPolicy(cfg.Booking.HourlyOverlapGuard)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		serviceRepo,
		pricing,
		overlapPolicy,
		producer,
		cfg.Booking.AdminWhatsApp,
		log,
	)
	paymentService := application.NewPaymentService(
		paymentRepo,
		bookingRepo,
		proofStore,
		transactor,
		producer,
		log,
	)
	verificationService := application.NewVerificationService(
		paymentRepo,
		bookingRepo,
		transactor,
		producer,
		log,
	)
	catalogService := application.NewCatalogService(serviceRepo, categoryRepo, log)

	// Initialize and start the housekeeping consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "housekeeping"
	housekeepingConsumer := application.NewHousekeepingConsumer(
		cfg.Kafka.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = housekeepingConsumer.Close() }()

	go func() {
		log.Info("starting housekeeping consumer", zap.String("group_id", groupID))
		if err := housekeepingConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("housekeeping consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	handler.RegisterValidators()
	catalogHandler := handler.NewCatalogHandler(catalogService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	adminHandler := handler.NewAdminHandler(verificationService, bookingService, catalogService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})

	// Register routes
	catalogHandler.RegisterRoutes(&router.RouterGroup)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	paymentHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-rental...")

	// Stop the consumer first so no completion lands mid-shutdown
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-rental stopped")
}
