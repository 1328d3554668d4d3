package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotbook/config"
	"slotbook/cron"
	"slotbook/database"
	"slotbook/database/repository"
	"slotbook/handlers"
	"slotbook/middleware"
	"slotbook/routes"
	"slotbook/services/availability"
	"slotbook/services/booking"
	"slotbook/services/notification"
	"slotbook/services/provider"
	"slotbook/services/slots"
	"slotbook/services/tasks"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stopMonitors := context.WithCancel(context.Background())
	defer stopMonitors()

	metrics := utils.NewMetrics("slotbook", prometheus.DefaultRegisterer)

	// repositories.
	var (
		stores      repository.Stores
		mongoClient *mongo.Client
	)
	switch cfg.StorageBackend {
	case config.StorageMongo:
		client, err := database.InitDB(rootCtx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		mongoClient = client
		stores, err = repository.NewMongoStores(rootCtx, client.Database(cfg.DatabaseName))
		if err != nil {
			logger.Fatal("main: failed to prepare MongoDB collections", zap.Error(err))
		}
	default:
		stores = repository.NewMemoryStores()
		logger.Warn("main: using in-memory storage; data is lost on restart")
	}

	// services.
	providerService, err := provider.NewDefaultProviderService(stores.Providers, cfg.AppointmentLength(), metrics, logger)
	if err != nil {
		logger.Fatal("main: failed to build provider service", zap.Error(err))
	}

	ledger := &booking.Ledger{
		Providers:    stores.Providers,
		Reservations: stores.Reservations,
		Rules: booking.Rules{
			AppointmentLength: cfg.AppointmentLength(),
			MinLeadTime:       cfg.MinLeadTime(),
			HoldExpiry:        cfg.HoldExpiry(),
		},
		Metrics: metrics,
		Logger:  logger,
	}

	var slotOptions []slots.Option
	if cfg.ClampFinalSlot {
		slotOptions = append(slotOptions, slots.WithinRange())
	}
	engine := &availability.Engine{
		Providers:         stores.Providers,
		Reservations:      stores.Reservations,
		AppointmentLength: cfg.AppointmentLength(),
		MinLeadTime:       cfg.MinLeadTime(),
		SlotOptions:       slotOptions,
		Metrics:           metrics,
		Logger:            logger,
	}

	// Redis: cross-process slot lock and hold reminders.
	var (
		redisClients   []*redis.Client
		reminderClient *asynq.Client
		reminderServer *asynq.Server
	)
	if cfg.RedisEnabled() {
		if err := utils.InitLockClient(); err != nil {
			logger.Fatal("main: failed to connect to Redis", zap.Error(err))
		}
		lockClient := utils.GetLockClient()
		redisClients = append(redisClients, lockClient)
		ledger.Locker = utils.NewRedisLocker(lockClient, 5*time.Second)

		if cfg.HoldReminderMinutes > 0 {
			reminderClient = cron.NewReminderClient(cfg)
			ledger.Reminders = &tasks.HoldReminderScheduler{
				Client: reminderClient,
				Lead:   cfg.HoldReminder(),
				Logger: logger,
			}
			notifier := notification.NewLogNotificationService(logger, metrics)
			handler := cron.NewReminderHandler(stores.Reservations, notifier, time.Now, logger)
			reminderServer = cron.InitReminderWorker(cfg, handler, logger)
		}
	} else {
		logger.Info("main: REDIS_ADDR not set; slot lock and hold reminders disabled")
		if cfg.StorageBackend == config.StorageMongo {
			logger.Warn("main: SINGLE_INSTANCE set; slot uniqueness is only enforced within this process")
		}
	}

	utils.CheckHealth(rootCtx, redisClients, mongoClient)
	go utils.StartHealthMonitor(rootCtx, 30*time.Second, redisClients, mongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestID(logger))
	router.Use(middleware.RequestLogger(logger, metrics))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewProviderHandler(providerService),
		handlers.NewAvailabilityHandler(engine),
		handlers.NewBookingHandler(ledger),
	)
	if cfg.JWTSecret != "" {
		handlerBundle.AuthMiddleware = middleware.JWTAuthMiddleware(cfg.JWTSecret)
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")
	stopMonitors()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}

	if reminderServer != nil {
		reminderServer.Shutdown()
	}
	if reminderClient != nil {
		if err := reminderClient.Close(); err != nil {
			logger.Warn("main: failed to close reminder client", zap.Error(err))
		}
	}
	for _, client := range redisClients {
		_ = client.Close()
	}
	if err := database.CloseDB(ctx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
