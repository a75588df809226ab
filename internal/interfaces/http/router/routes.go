package router

import (
	"github.com/gin-gonic/gin"
	"github.com/library/backend/internal/application/analytics"
	"github.com/library/backend/internal/application/catalog"
	"github.com/library/backend/internal/application/lending"
	"github.com/library/backend/internal/application/membership"
	"github.com/library/backend/internal/infrastructure/config"
	"github.com/library/backend/internal/infrastructure/logger"
	"github.com/library/backend/internal/infrastructure/telemetry"
	"github.com/library/backend/internal/interfaces/http/handler"
	"github.com/library/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies carries everything the HTTP layer needs
type Dependencies struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB
	Cache         handler.HealthPinger
	MeterProvider *telemetry.MeterProvider

	BookService      *catalog.BookService
	BorrowerService  *membership.BorrowerService
	LoanService      *lending.LoanService
	AnalyticsService *analytics.AnalyticsService
}

// Setup builds the gin engine with the full middleware chain and all
// API routes registered
func Setup(deps Dependencies) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	if len(deps.Config.HTTP.TrustedProxies) > 0 {
		// SetTrustedProxies only fails on unparseable entries
		if err := engine.SetTrustedProxies(deps.Config.HTTP.TrustedProxies); err != nil {
			deps.Logger.Warn("invalid trusted proxies, using defaults", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(gin.Recovery())

	corsConfig := middleware.DefaultCORSConfig()
	if len(deps.Config.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = deps.Config.HTTP.CORSAllowOrigins
	}
	if len(deps.Config.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = deps.Config.HTTP.CORSAllowMethods
	}
	if len(deps.Config.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = deps.Config.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.Secure())

	if deps.Config.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(deps.Config.HTTP.MaxBodySize))
	}
	if deps.Config.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(
			deps.Config.HTTP.RateLimitRequests,
			deps.Config.HTTP.RateLimitWindow,
		)
		engine.Use(middleware.RateLimit(limiter))
	}

	if deps.Config.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: deps.Config.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: deps.MeterProvider,
		ServiceName:   deps.Config.Telemetry.ServiceName,
		Enabled:       deps.Config.Telemetry.Enabled,
	}))

	registerRoutes(engine, deps)
	return engine
}

func registerRoutes(engine *gin.Engine, deps Dependencies) {
	bookHandler := handler.NewBookHandler(deps.BookService)
	borrowerHandler := handler.NewBorrowerHandler(deps.BorrowerService)
	loanHandler := handler.NewLoanHandler(deps.LoanService)
	analyticsHandler := handler.NewAnalyticsHandler(deps.AnalyticsService)
	systemHandler := handler.NewSystemHandler(deps.DB, deps.Cache)

	books := NewDomainGroup("books", "/books")
	books.POST("", bookHandler.Create).
		GET("", bookHandler.List).
		GET("/categories", bookHandler.Categories).
		GET("/isbn/:isbn", bookHandler.GetByISBN).
		GET("/:id", bookHandler.Get).
		PUT("/:id", bookHandler.Update).
		PATCH("/:id/status", bookHandler.ChangeStatus).
		DELETE("/:id", bookHandler.Delete)

	borrowers := NewDomainGroup("borrowers", "/borrowers")
	borrowers.POST("", borrowerHandler.Register).
		GET("", borrowerHandler.List).
		GET("/:id", borrowerHandler.Get).
		PUT("/:id", borrowerHandler.Update).
		PATCH("/:id/email", borrowerHandler.UpdateEmail).
		PATCH("/:id/status", borrowerHandler.ChangeStatus).
		DELETE("/:id", borrowerHandler.Delete).
		GET("/:id/loans", borrowerHandler.LoanHistory)

	loans := NewDomainGroup("loans", "/loans")
	loans.POST("", loanHandler.Borrow).
		GET("", loanHandler.List).
		GET("/overdue", loanHandler.ListOverdue).
		POST("/overdue/sweep", loanHandler.SweepOverdue).
		GET("/:id", loanHandler.Get).
		POST("/:id/return", loanHandler.Return).
		POST("/book/:book_id/return", loanHandler.ReturnByBook)

	analyticsGroup := NewDomainGroup("analytics", "/analytics")
	analyticsGroup.GET("/books/most-borrowed", analyticsHandler.MostBorrowedBooks).
		GET("/books/:id/recommendations", analyticsHandler.Recommendations).
		GET("/borrowers/most-active", analyticsHandler.MostActiveBorrowers).
		GET("/borrowers/:id/reading-pace", analyticsHandler.ReadingPace)

	system := NewDomainGroup("system", "/system")
	system.GET("/ping", systemHandler.Ping).
		GET("/info", systemHandler.GetSystemInfo).
		GET("/health", systemHandler.Health)

	NewRouter(engine).
		Register(books).
		Register(borrowers).
		Register(loans).
		Register(analyticsGroup).
		Register(system).
		Setup()
}
