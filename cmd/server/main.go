package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dinehub/backend/internal/actor"
	accountingapp "github.com/dinehub/backend/internal/application/accounting"
	alertingapp "github.com/dinehub/backend/internal/application/alerting"
	bookingapp "github.com/dinehub/backend/internal/application/booking"
	costingapp "github.com/dinehub/backend/internal/application/costing"
	gatewayapp "github.com/dinehub/backend/internal/application/gateway"
	giftcardapp "github.com/dinehub/backend/internal/application/giftcard"
	inventoryapp "github.com/dinehub/backend/internal/application/inventory"
	loyaltyapp "github.com/dinehub/backend/internal/application/loyalty"
	salesapp "github.com/dinehub/backend/internal/application/sales"
	workforceapp "github.com/dinehub/backend/internal/application/workforce"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/dinehub/backend/internal/infrastructure/authz"
	"github.com/dinehub/backend/internal/infrastructure/cache"
	"github.com/dinehub/backend/internal/infrastructure/config"
	"github.com/dinehub/backend/internal/infrastructure/event"
	"github.com/dinehub/backend/internal/infrastructure/logger"
	"github.com/dinehub/backend/internal/infrastructure/payment"
	"github.com/dinehub/backend/internal/infrastructure/persistence"
	"github.com/dinehub/backend/internal/infrastructure/scheduler"
	"github.com/dinehub/backend/internal/infrastructure/telemetry"
	"github.com/dinehub/backend/internal/infrastructure/webhook"
	"github.com/dinehub/backend/internal/interfaces/http/handler"
	"github.com/dinehub/backend/internal/interfaces/http/middleware"
	"github.com/dinehub/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is stamped at build time via -ldflags
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting DineHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// OpenTelemetry providers; both are no-ops when telemetry is disabled
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Falls back to the otel global (a no-op) when metrics are disabled
	meter := meterProvider.Meter("dinehub")

	// Log export to the collector; when enabled the app logger is teed so
	// every entry reaches both stdout and the OTLP endpoint
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		if err := logsProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	if logsProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: logsProvider,
			Level:          cfg.Log.Level,
		})
		log = telemetry.NewBridgedLogger(log.Core(), otelCore,
			zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	// Continuous profiling (Pyroscope); a no-op profiler when disabled
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Telemetry.ProfilerEnabled,
		ServerAddress:       cfg.Telemetry.PyroscopeAddress,
		ApplicationName:     cfg.Telemetry.ServiceName,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
		ProfileGoroutines:   true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Database query tracing (otelgorm)
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Database query metrics (GORM plugin plus pool gauges); nil when disabled
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.Enabled,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	} else if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
		defer dbMetrics.Stop()
	}

	// Event serializer knows every event shape the outbox can carry
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Outbox publisher saves events in the same transaction as actor state
	outboxPublisher := event.NewOutboxPublisher(eventSerializer,
		event.WithMaxRetries(cfg.Event.MaxRetries))
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Entity store persists actor state with optimistic concurrency
	entityStore := persistence.NewGormEntityStore(db.DB, outboxPublisher)

	// Actor runtime
	runtimeOpts := []actor.Option{}
	if meterProvider.IsEnabled() {
		runtimeMetrics, err := telemetry.NewRuntimeMetrics(meter, log)
		if err != nil {
			log.Fatal("Failed to create runtime metrics", zap.Error(err))
		}
		runtimeOpts = append(runtimeOpts, actor.WithMetrics(runtimeMetrics))
	}
	runtime := actor.NewRuntime(entityStore, actor.Config{
		MailboxSize:    cfg.Runtime.MailboxSize,
		IdleTimeout:    cfg.Runtime.IdleTimeout,
		PersistRetries: cfg.Runtime.MaxConflictRetries,
	}, log, runtimeOpts...)

	// Register every aggregate behavior the platform serves
	runtime.Register(costingapp.NewRecipeBehavior())
	runtime.Register(inventoryapp.NewStockBehavior())
	runtime.Register(loyaltyapp.NewLoyaltyBehavior())
	runtime.Register(giftcardapp.NewGiftCardBehavior())
	runtime.Register(bookingapp.NewDepositBehavior())
	runtime.Register(workforceapp.NewTimesheetBehavior())
	runtime.Register(salesapp.NewSalesDayBehavior())
	runtime.Register(accountingapp.NewJournalBehavior())
	runtime.Register(gatewayapp.NewMerchantBehavior())
	runtime.Register(gatewayapp.NewTerminalBehavior(cfg.Terminal.HeartbeatStaleness))
	runtime.Register(gatewayapp.NewRefundBehavior())
	runtime.Register(gatewayapp.NewWebhookEndpointBehavior())

	// Read models and directories (queries go to the database, never through
	// the actors)
	recipeReadModel := persistence.NewRecipeReadModel(db.DB)
	recipeProjection := persistence.NewRecipeProjectionHandler(db.DB)
	directory := persistence.NewEntityDirectory(db.DB)

	// Idempotency store suppresses duplicate deliveries to the reactors
	idemStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idemStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Card processor for refund execution
	var processor gatewayapp.CardProcessor
	if cfg.Payment.Simulated {
		processor = payment.NewSimulatedProcessor()
		log.Info("Card processor simulator active")
	} else {
		adapter, err := payment.NewCardProcessorAdapter(&payment.CardProcessorConfig{
			BaseURL:       cfg.Payment.BaseURL,
			APIKey:        cfg.Payment.APIKey,
			SigningSecret: cfg.Payment.SigningSecret,
			Timeout:       cfg.Payment.Timeout,
			IsSandbox:     cfg.Payment.Sandbox,
		})
		if err != nil {
			log.Fatal("Failed to configure card processor", zap.Error(err))
		}
		processor = adapter
	}

	// Webhook delivery over HTTP with signed payloads
	deliverer := webhook.NewHTTPDeliverer(cfg.Webhook.DeliveryTimeout, cfg.Webhook.SignatureTTL, log)

	// Event fabric and the reactors it feeds
	fabric := event.NewFabric(event.DefaultFabricConfig(), log)

	idempotent := func(h shared.EventHandler) shared.EventHandler {
		return event.NewIdempotentHandler(h, idemStore, log)
	}

	// Order lifecycle reactors: loyalty accrual, daily sales aggregation,
	// ingredient stock draw-down
	fabric.Subscribe(shared.NamespaceOrder, idempotent(loyaltyapp.NewOrderCompletedHandler(runtime, log)))
	fabric.Subscribe(shared.NamespaceOrder, idempotent(salesapp.NewSalesAggregationHandler(runtime, log)))
	fabric.Subscribe(shared.NamespaceOrder, idempotent(inventoryapp.NewStockConsumptionHandler(runtime, recipeReadModel, log)))

	// Inventory reactors: recipe recost on price change, operational alerts,
	// recipe read model projection
	fabric.Subscribe(shared.NamespaceInventory, idempotent(costingapp.NewIngredientCostChangedHandler(runtime, recipeReadModel, log)))
	fabric.Subscribe(shared.NamespaceInventory, idempotent(alertingapp.NewOperationalAlertHandler(fabric, log)))
	fabric.Subscribe(shared.NamespaceInventory, recipeProjection)

	// Accounting journal follows every revenue-moving event
	journalProjection := accountingapp.NewJournalProjectionHandler(runtime, log)
	fabric.Subscribe(shared.NamespaceSales, idempotent(journalProjection))
	fabric.Subscribe(shared.NamespaceAccounting, idempotent(journalProjection))
	fabric.Subscribe(shared.NamespaceBookingDeposit, idempotent(journalProjection))

	// Refund execution against the card processor
	fabric.Subscribe(shared.NamespaceAccounting, idempotent(gatewayapp.NewRefundRequestedHandler(runtime, processor, log)))

	// Webhook fan-out of business events to tenant endpoints. The endpoint
	// aggregates themselves publish on the user namespace, which keeps the
	// dispatcher's own delivery records out of its input.
	webhookDispatcher := gatewayapp.NewWebhookDispatcher(directory, runtime, deliverer, runtime, nil, log)
	fabric.Subscribe(shared.NamespaceOrder, idempotent(webhookDispatcher))
	fabric.Subscribe(shared.NamespaceAccounting, idempotent(webhookDispatcher))
	fabric.Subscribe(shared.NamespaceGiftCard, idempotent(webhookDispatcher))
	fabric.Subscribe(shared.NamespaceBookingDeposit, idempotent(webhookDispatcher))

	if err := fabric.Start(ctx); err != nil {
		log.Fatal("Failed to start event fabric", zap.Error(err))
	}
	defer func() {
		if err := fabric.Stop(context.Background()); err != nil {
			log.Error("Error stopping event fabric", zap.Error(err))
		}
	}()

	// Outbox processor drains committed events onto the fabric
	if cfg.Event.ProcessorEnabled {
		processorConfig := event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  time.Hour,
		}
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, fabric, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Maintenance jobs
	if cfg.Scheduler.Enabled {
		jobScheduler := scheduler.NewScheduler(scheduler.Config{
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
		}, log)
		if err := jobScheduler.Register(cfg.Loyalty.YTDResetCron,
			scheduler.NewLoyaltyYTDResetJob(directory, runtime, log)); err != nil {
			log.Fatal("Failed to register year-to-date reset job", zap.Error(err))
		}
		if err := jobScheduler.Register(cfg.Scheduler.CostSnapshotCron,
			scheduler.NewCostSnapshotJob(directory, runtime, log)); err != nil {
			log.Fatal("Failed to register cost snapshot job", zap.Error(err))
		}
		jobScheduler.Start()
		defer jobScheduler.Stop()
		log.Info("Scheduler started",
			zap.String("ytd_reset_cron", cfg.Loyalty.YTDResetCron),
			zap.String("cost_snapshot_cron", cfg.Scheduler.CostSnapshotCron),
		)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing/Metrics - OpenTelemetry instrumentation
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.SpanErrorMarker())
		engine.Use(middleware.HTTPMetricsWithMeter(meter, true))
	}
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health and readiness probes stay outside the tenant-scoped API
	handler.NewHealthHandler(db.DB, cfg.App.Name, version).RegisterRoutes(engine)

	// API routes: tenant context is mandatory, request deadline bounds how
	// long a dispatch may wait on a busy mailbox
	base := handler.NewBaseHandler(runtime, log)
	permissions := authz.NewLoggingChecker(authz.NewAllowAll(), log)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.TenantMiddleware())
	r.Use(middleware.RequirePermission(permissions, "commands:dispatch"))
	r.Use(middleware.Timeout(cfg.Runtime.DispatchTimeout))

	r.Register(handler.NewRecipeHandler(base)).
		Register(handler.NewStockHandler(base)).
		Register(handler.NewLoyaltyHandler(base)).
		Register(handler.NewGiftCardHandler(base)).
		Register(handler.NewDepositHandler(base)).
		Register(handler.NewTimesheetHandler(base)).
		Register(handler.NewGatewayHandler(base, cfg.Terminal.HeartbeatStaleness, cfg.Webhook.HistorySize)).
		Register(handler.NewReportingHandler(base))
	r.Setup()

	// Create HTTP server with config
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Drain in-flight actor work before the deferred teardown of the fabric
	// and outbox processor
	if err := runtime.Stop(shutdownCtx); err != nil {
		log.Error("Actor runtime did not drain cleanly", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
