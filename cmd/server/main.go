package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/dormdesk/backend/internal/application/billing"
	eventapp "github.com/dormdesk/backend/internal/application/event"
	meteringapp "github.com/dormdesk/backend/internal/application/metering"
	paymentapp "github.com/dormdesk/backend/internal/application/payment"
	propertyapp "github.com/dormdesk/backend/internal/application/property"
	reportapp "github.com/dormdesk/backend/internal/application/report"
	"github.com/dormdesk/backend/internal/domain/metering"
	"github.com/dormdesk/backend/internal/infrastructure/auth"
	"github.com/dormdesk/backend/internal/infrastructure/cache"
	"github.com/dormdesk/backend/internal/infrastructure/config"
	"github.com/dormdesk/backend/internal/infrastructure/event"
	"github.com/dormdesk/backend/internal/infrastructure/ingest"
	"github.com/dormdesk/backend/internal/infrastructure/logger"
	"github.com/dormdesk/backend/internal/infrastructure/notification"
	"github.com/dormdesk/backend/internal/infrastructure/persistence"
	"github.com/dormdesk/backend/internal/infrastructure/scheduler"
	"github.com/dormdesk/backend/internal/infrastructure/storage"
	"github.com/dormdesk/backend/internal/infrastructure/telemetry"
	"github.com/dormdesk/backend/internal/interfaces/http/handler"
	"github.com/dormdesk/backend/internal/interfaces/http/middleware"
	"github.com/dormdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry first so the final logger can tee into the OTLP log pipeline
	tel, err := telemetry.Setup(context.Background(), cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			bootLog.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	log, err := logger.New(logCfg, tel.Logs.ZapCore(zapcore.InfoLevel))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync(log)

	loc := cfg.App.Location()
	log.Info("Starting dormdesk",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", loc.String()),
		zap.String("version", version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	buildingRepo := persistence.NewGormBuildingRepository(db.DB)
	roomRepo := persistence.NewGormRoomRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	contractRepo := persistence.NewGormContractRepository(db.DB)
	readingRepo := persistence.NewGormMeterReadingRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	txManager := persistence.NewTxManager(db.DB)

	// Slip storage
	var slips paymentapp.SlipStore
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3SlipStore(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration))
		if err != nil {
			log.Fatal("Failed to initialize slip storage", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3Store.EnsureBucket(ctx); err != nil {
			log.Warn("Slip bucket check failed", zap.String("bucket", s3Store.Bucket()), zap.Error(err))
		}
		cancel()
		slips = s3Store
	} else {
		log.Warn("Object storage disabled, slip URLs are not backed by a bucket")
		slips = storage.NewStubSlipStore()
	}

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Application services
	rates := metering.Rates{Water: cfg.Metering.WaterRate, Electric: cfg.Metering.ElectricRate}
	buildingService := propertyapp.NewBuildingService(buildingRepo, roomRepo)
	roomService := propertyapp.NewRoomService(roomRepo, buildingRepo, eventBus)
	tenantService := propertyapp.NewTenantService(tenantRepo, roomRepo, contractRepo, txManager, eventBus)
	contractService := propertyapp.NewContractService(contractRepo, tenantRepo, roomRepo, eventBus)
	readingService := meteringapp.NewReadingService(readingRepo, roomRepo, rates, eventBus)
	billService := billingapp.NewBillService(billRepo, paymentRepo, roomRepo, tenantRepo, readingRepo, txManager, eventBus,
		billingapp.Settings{DueDay: cfg.Billing.DueDay, Location: loc})
	paymentService := paymentapp.NewService(paymentRepo, billRepo, txManager, slips, eventBus)
	dashboardService := reportapp.NewDashboardService(roomRepo, tenantRepo, billRepo, loc)

	// Realtime relay: Redis pub/sub when enabled, in-process otherwise
	relay, err := cache.NewRelayFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithChannel(cfg.Realtime.Channel),
	).CreateRelay()
	if err != nil {
		log.Fatal("Failed to initialize realtime relay", zap.Error(err))
	}
	defer func() {
		if err := relay.Close(); err != nil {
			log.Error("Error closing realtime relay", zap.Error(err))
		}
	}()

	// Event handlers
	mailer := notification.NewMailer(cfg.Notification, cfg.App.Name, log)
	webhook := notification.NewWebhook(cfg.Notification, log)
	eventBus.Subscribe(eventapp.NewMetricsHandler(tel.Metrics))
	eventBus.Subscribe(eventapp.NewNotificationHandler(
		tenantRepo, roomRepo, billRepo, mailer, webhook, tel.Metrics, loc, log))
	eventBus.Subscribe(eventapp.NewRelayHandler(relay))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Smart meter ingestion (if enabled)
	if cfg.MQTT.Enabled {
		subscriber, err := ingest.NewSubscriber(cfg.MQTT, ingest.NewHandler(readingService, log), log)
		if err != nil {
			log.Fatal("Failed to initialize meter subscriber", zap.Error(err))
		}
		if err := subscriber.Start(context.Background()); err != nil {
			log.Fatal("Failed to start meter subscriber", zap.Error(err))
		}
		defer func() {
			if err := subscriber.Stop(context.Background()); err != nil {
				log.Error("Error stopping meter subscriber", zap.Error(err))
			}
		}()
		log.Info("Meter subscriber started", zap.String("topic", subscriber.Topic()))
	}

	// Background jobs (if enabled)
	if cfg.Scheduler.Enabled {
		jobScheduler := scheduler.NewScheduler(cfg.Scheduler, scheduler.NewExecutor(billService, contractService, log), log)
		if err := jobScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start job scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping job scheduler", zap.Error(err))
			}
		}()

		trigger, err := scheduler.NewCronTrigger(cfg.Scheduler, jobScheduler, loc, log)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
	}

	// HTTP handlers
	eventStream := handler.NewEventStreamHandler(relay, tenantService,
		handler.WithStreamLogger(log),
		handler.WithStreamHeartbeat(cfg.Realtime.HeartbeatInterval),
		handler.WithStreamBuffer(cfg.Realtime.ClientBuffer),
	)
	if err := eventStream.Start(); err != nil {
		log.Fatal("Failed to start event stream", zap.Error(err))
	}

	handlers := router.Handlers{
		Health:    handler.NewHealthHandler(db, version),
		Buildings: handler.NewBuildingHandler(buildingService),
		Rooms:     handler.NewRoomHandler(roomService),
		Tenants:   handler.NewTenantHandler(tenantService),
		Contracts: handler.NewContractHandler(contractService),
		Readings:  handler.NewMeterReadingHandler(readingService),
		Bills:     handler.NewBillHandler(billService, tenantService),
		Payments:  handler.NewPaymentHandler(paymentService, tenantService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Events:    eventStream,
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	var submitLimiter *middleware.RateLimiter
	if cfg.HTTP.SubmitRateLimit > 0 {
		submitLimiter = middleware.NewRateLimiter(cfg.HTTP.SubmitRateLimit, cfg.HTTP.SubmitRateWindow)
		defer submitLimiter.Stop()
	}

	engine, err := router.New(handlers, router.Options{
		ServiceName:    cfg.Telemetry.ServiceName,
		Logger:         log,
		TokenValidator: auth.NewJWTService(cfg.JWT),
		TracingEnabled: tel.Tracer.IsEnabled(),
		Meter:          meterOf(tel),
		CORS:           corsCfg,
		MaxBodyBytes:   cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		SubmitLimiter:  submitLimiter,
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Streams end first so Shutdown is not held open by them
	eventStream.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// meterOf returns the HTTP metrics meter, or nil when metrics are disabled
func meterOf(tel *telemetry.Telemetry) metric.Meter {
	if !tel.Meter.IsEnabled() {
		return nil
	}
	return tel.Meter.Meter("github.com/dormdesk/backend/http")
}
