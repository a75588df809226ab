package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	analyticsapp "github.com/library/backend/internal/application/analytics"
	catalogapp "github.com/library/backend/internal/application/catalog"
	lendingapp "github.com/library/backend/internal/application/lending"
	membershipapp "github.com/library/backend/internal/application/membership"
	"github.com/library/backend/internal/infrastructure/cache"
	"github.com/library/backend/internal/infrastructure/config"
	"github.com/library/backend/internal/infrastructure/event"
	"github.com/library/backend/internal/infrastructure/logger"
	"github.com/library/backend/internal/infrastructure/persistence"
	"github.com/library/backend/internal/infrastructure/scheduler"
	"github.com/library/backend/internal/infrastructure/telemetry"
	"github.com/library/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Library Backend API
//	@version		1.0
//	@description	Library lending backend - catalog, borrowers, loans and analytics

//	@host		localhost:8080
//	@BasePath	/api/v1

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
		_ = logger.Sync(log)
	}()

	log.Info("Starting Library Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)
	log.Info("Loan policy",
		zap.Int("default_loan_period_days", cfg.Lending.DefaultLoanPeriodDays),
		zap.String("daily_overdue_fee", cfg.Lending.DailyOverdueFee.String()),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize telemetry before anything that emits spans or metrics
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
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
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracingCfg := telemetry.DefaultDBTracingConfig()
		dbTracingCfg.Enabled = true
		dbTracing := telemetry.NewDBTracingPlugin(dbTracingCfg, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	bookRepo := persistence.NewGormBookRepository(db.DB)
	borrowerRepo := persistence.NewGormBorrowerRepository(db.DB)
	loanRepo := persistence.NewGormLoanRepository(db.DB)

	// Initialize event bus and the audit trail subscriber
	eventBus := event.NewInMemoryEventBus(log)
	auditHandler := event.NewAuditLogHandler(log)
	eventBus.Subscribe(auditHandler)
	log.Info("Audit log handler subscribed to all domain events")

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Analytics cache is optional: the service falls back to computing
	// every query against the database when Redis is not configured
	var analyticsCache *cache.RedisAnalyticsCache
	var cachePort analyticsapp.Cache
	if cfg.Analytics.CacheEnabled {
		analyticsCache, err = cache.NewRedisAnalyticsCache(&cfg.Redis, log)
		if err != nil {
			log.Warn("Analytics cache unavailable, continuing without it", zap.Error(err))
			analyticsCache = nil
		} else {
			cachePort = analyticsCache
			defer func() {
				if err := analyticsCache.Close(); err != nil {
					log.Error("Error closing analytics cache", zap.Error(err))
				}
			}()
			log.Info("Analytics cache connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	// Initialize application services
	bookService := catalogapp.NewBookService(bookRepo, loanRepo, eventBus, log)
	borrowerService := membershipapp.NewBorrowerService(borrowerRepo, loanRepo, eventBus, log)
	txManager := persistence.NewGormTransactionManager(db.DB)
	loanService := lendingapp.NewLoanService(loanRepo, bookRepo, borrowerRepo, txManager, eventBus, log)
	analyticsService := analyticsapp.NewAnalyticsService(loanRepo, cachePort, log)

	// Start the overdue sweep scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		sweepScheduler := scheduler.NewOverdueSweepScheduler(loanService, log, scheduler.OverdueSweepSchedulerConfig{
			Enabled:       cfg.Scheduler.Enabled,
			SweepInterval: cfg.Scheduler.SweepInterval,
			SweepTimeout:  cfg.Scheduler.SweepTimeout,
		})
		if err := sweepScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start overdue sweep scheduler", zap.Error(err))
		}
		defer func() {
			if err := sweepScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping overdue sweep scheduler", zap.Error(err))
			}
		}()
		log.Info("Overdue sweep scheduler started",
			zap.Duration("sweep_interval", cfg.Scheduler.SweepInterval),
			zap.Duration("sweep_timeout", cfg.Scheduler.SweepTimeout),
		)
	}

	// Build the HTTP engine with the full middleware chain and routes
	deps := router.Dependencies{
		Config:           cfg,
		Logger:           log,
		DB:               db.DB,
		MeterProvider:    meterProvider,
		BookService:      bookService,
		BorrowerService:  borrowerService,
		LoanService:      loanService,
		AnalyticsService: analyticsService,
	}
	if analyticsCache != nil {
		deps.Cache = analyticsCache
	}
	engine := router.Setup(deps)

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
