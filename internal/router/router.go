package router

import (
	"context"
	"time"

	"github.com/Orbeng/engser/internal/auth"
	"github.com/Orbeng/engser/internal/config"
	"github.com/Orbeng/engser/internal/handler"
	"github.com/Orbeng/engser/internal/infra"
	"github.com/Orbeng/engser/internal/middleware"
	"github.com/Orbeng/engser/internal/repository"
	"github.com/Orbeng/engser/internal/service"
	"github.com/Orbeng/engser/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const loginAttemptsPerMinute = 10

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb and mailCB may be nil. ctx bounds the background rate limiter purges.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, authn *auth.Authenticator, mailCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	apiLimiter := middleware.NewRateLimiter("api", cfg.RateLimit, time.Minute)
	loginLimiter := middleware.NewRateLimiter("login", loginAttemptsPerMinute, time.Minute)
	go apiLimiter.RunPurge(ctx)
	go loginLimiter.RunPurge(ctx)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware())

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	dashboardSvc := service.NewDashboardService(companyRepo, serviceRepo, quoteRepo, rdb, cfg.DashboardCacheTTL)
	companySvc := service.NewCompanyService(companyRepo, dashboardSvc)
	serviceSvc := service.NewServiceService(serviceRepo, dashboardSvc)
	quoteSvc := service.NewQuoteService(quoteRepo,
		service.NewClockNumberSource(cfg.QuoteNumberPrefix), cfg.QuoteNumberAttempts, dashboardSvc)

	// Reset mails go through the redis queue; without redis links are only logged.
	var mail service.MailQueue
	if rdb != nil {
		mail = worker.NewDispatcher(rdb)
	}
	authSvc := service.NewAuthService(userRepo, authn, mail, cfg.AppBaseURL)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	companiesH := handler.NewCompaniesHandler(companySvc)
	servicesH := handler.NewServicesHandler(serviceSvc)
	quotesH := handler.NewQuotesHandler(quoteSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailCB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(cfg.APIPrefix)

	// Auth (public)
	api.POST("/register", authH.Register)
	api.POST("/login", loginLimiter.Middleware(), authH.Login)
	api.POST("/refresh", authH.Refresh)
	api.POST("/reset-password-request", loginLimiter.Middleware(), authH.RequestPasswordReset)
	api.POST("/reset-password", authH.ResetPassword)

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(authn))
	{
		protected.GET("/user", authH.User)

		companies := protected.Group("/companies")
		{
			companies.GET("", companiesH.List)
			companies.GET("/all", companiesH.All)
			companies.GET("/:id", companiesH.Get)
			companies.POST("", companiesH.Create)
			companies.PUT("/:id", companiesH.Update)
			companies.DELETE("/:id", companiesH.Delete)
		}

		services := protected.Group("/services")
		{
			services.GET("", servicesH.List)
			services.GET("/all", servicesH.All)
			services.GET("/recent", servicesH.Recent)
			services.GET("/upcoming-deadlines", servicesH.UpcomingDeadlines)
			services.GET("/:id", servicesH.Get)
			services.POST("", servicesH.Create)
			services.PUT("/:id", servicesH.Update)
			services.DELETE("/:id", servicesH.Delete)
		}

		quotes := protected.Group("/quotes")
		{
			quotes.GET("", quotesH.List)
			quotes.GET("/:id", quotesH.Get)
			quotes.POST("", quotesH.Create)
			quotes.PUT("/:id", quotesH.Update)
			quotes.DELETE("/:id", quotesH.Delete)
		}

		protected.GET("/dashboard/stats", dashboardH.Stats)
	}

	// Swagger UI outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
