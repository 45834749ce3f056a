package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/estatedesk/backoffice/config"
	"github.com/estatedesk/backoffice/pkg/api/handlers"
	apimw "github.com/estatedesk/backoffice/pkg/api/middleware"
	"github.com/estatedesk/backoffice/pkg/auth"
	"github.com/estatedesk/backoffice/pkg/cache"
	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/developers"
	"github.com/estatedesk/backoffice/pkg/email"
	"github.com/estatedesk/backoffice/pkg/export"
	"github.com/estatedesk/backoffice/pkg/jobs"
	"github.com/estatedesk/backoffice/pkg/leadassignment"
	"github.com/estatedesk/backoffice/pkg/leadlifecycle"
	"github.com/estatedesk/backoffice/pkg/leadnote"
	"github.com/estatedesk/backoffice/pkg/leads"
	"github.com/estatedesk/backoffice/pkg/leadscoring"
	"github.com/estatedesk/backoffice/pkg/locations"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/metrics"
	custommiddleware "github.com/estatedesk/backoffice/pkg/middleware"
	"github.com/estatedesk/backoffice/pkg/projects"
	"github.com/estatedesk/backoffice/pkg/properties"
	"github.com/estatedesk/backoffice/pkg/users"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Database
	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.DB); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}
	log.Printf("✅ Database connected and migrated")

	// Redis cache
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Printf("✅ Redis connected")

	// Prometheus metrics
	prometheusMetrics := metrics.New()

	// Services
	tokenBlacklist := auth.NewTokenBlacklist(redisClient)
	emailService := email.NewService(cfg.EmailFrom, cfg.EmailFromName, cfg.SendGridAPIKey)
	leadService := leads.NewService(db, redisClient, appLogger)
	lifecycleService := leadlifecycle.NewService(db, redisClient, appLogger)
	assignmentService := leadassignment.NewService(db, redisClient, emailService, appLogger)
	scoringService := leadscoring.NewService(db, redisClient, appLogger)
	noteService := leadnote.NewService(db, appLogger)
	userService := users.NewService(db, cfg, appLogger)
	exportService := export.NewService(leadService, cfg.ExportDir, appLogger)
	propertyService := properties.NewService(db, appLogger)
	projectService := projects.NewService(db, appLogger)
	developerService := developers.NewService(db, appLogger)
	locationService := locations.NewService(db, appLogger)

	// Cron jobs
	scheduler := jobs.NewScheduler(db, lifecycleService, scoringService, emailService, cfg.StaleLeadDays, appLogger)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron jobs: %v", err)
	}
	log.Printf("✅ Cron jobs started")

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, tokenBlacklist, prometheusMetrics)
	leadHandler := handlers.NewLeadHandler(leadService, prometheusMetrics)
	lifecycleHandler := handlers.NewLifecycleHandler(lifecycleService, prometheusMetrics)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, prometheusMetrics)
	scoringHandler := handlers.NewScoringHandler(scoringService)
	noteHandler := handlers.NewNoteHandler(noteService)
	userHandler := handlers.NewUserHandler(userService)
	exportHandler := handlers.NewExportHandler(exportService, prometheusMetrics)
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	catalogHandler := handlers.NewCatalogHandler(projectService, developerService, locationService)
	phoneHandler := handlers.NewPhoneHandler()

	// Echo
	e := echo.New()
	e.HideBanner = true

	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			appLogger.Info("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(globalRateLimiter.Middleware())

	// Public endpoints
	e.GET("/health", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}
		if _, err := redisClient.Redis.Ping(c.Request().Context()).Result(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"cache":  "down",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    "up",
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")

	// Authentication routes (public)
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register, authRateLimiter.Middleware())
		authRoutes.POST("/login", authHandler.Login, authRateLimiter.Middleware())
		authRoutes.GET("/me", authHandler.Me, apimw.JWTMiddlewareWithBlacklist(cfg.JWTSecret, tokenBlacklist, db))
		authRoutes.POST("/logout", authHandler.Logout, apimw.JWTMiddlewareWithBlacklist(cfg.JWTSecret, tokenBlacklist, db))
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(apimw.JWTMiddlewareWithBlacklist(cfg.JWTSecret, tokenBlacklist, db))
	{
		leadsGroup := protected.Group("/leads")
		{
			leadsGroup.POST("", leadHandler.Create)
			leadsGroup.POST("/bulk", leadHandler.BulkCreate)
			leadsGroup.GET("", leadHandler.List)
			leadsGroup.GET("/check-phone", leadHandler.CheckPhone)
			leadsGroup.GET("/status-counts", lifecycleHandler.StatusCounts)
			leadsGroup.GET("/:id", leadHandler.Get)
			leadsGroup.PATCH("/:id", leadHandler.Update)
			leadsGroup.DELETE("/:id", leadHandler.Delete, custommiddleware.RequireAdmin())

			// Lifecycle
			leadsGroup.PATCH("/:id/status", lifecycleHandler.UpdateStatus)
			leadsGroup.GET("/:id/status-history", lifecycleHandler.History)

			// Assignment
			leadsGroup.PATCH("/:id/assign-agent", assignmentHandler.Assign, custommiddleware.RequireAdmin())
			leadsGroup.POST("/:id/auto-assign", assignmentHandler.AutoAssign, custommiddleware.RequireAdmin())
			leadsGroup.DELETE("/:id/assign-agent", assignmentHandler.Unassign, custommiddleware.RequireAdmin())
			leadsGroup.GET("/:id/assignment-history", assignmentHandler.History)

			// Scoring
			leadsGroup.GET("/:id/score", scoringHandler.Calculate)

			// Notes
			leadsGroup.POST("/:id/notes", noteHandler.Create)
			leadsGroup.GET("/:id/notes", noteHandler.List)
		}

		notesGroup := protected.Group("/notes")
		{
			notesGroup.PATCH("/:id", noteHandler.Update)
			notesGroup.DELETE("/:id", noteHandler.Delete)
		}

		agentsGroup := protected.Group("/agents")
		{
			agentsGroup.GET("", userHandler.ListAgents)
			agentsGroup.GET("/:id/leads", assignmentHandler.AgentLeads)
		}

		protected.GET("/user/assigned-leads", assignmentHandler.MyLeads)

		exportsGroup := protected.Group("/exports")
		{
			exportsGroup.POST("", exportHandler.Create)
			exportsGroup.GET("/:filename", exportHandler.Download)
		}

		phoneGroup := protected.Group("/phone")
		{
			phoneGroup.GET("/validate", phoneHandler.Validate)
			phoneGroup.GET("/normalize", phoneHandler.Normalize)
		}

		// Catalog
		propertiesGroup := protected.Group("/properties")
		{
			propertiesGroup.POST("", propertyHandler.Create, custommiddleware.RequireAdmin())
			propertiesGroup.GET("", propertyHandler.List)
			propertiesGroup.GET("/:id", propertyHandler.Get)
			propertiesGroup.PUT("/:id", propertyHandler.Update, custommiddleware.RequireAdmin())
			propertiesGroup.DELETE("/:id", propertyHandler.Archive, custommiddleware.RequireAdmin())
		}

		projectsGroup := protected.Group("/projects")
		{
			projectsGroup.POST("", catalogHandler.CreateProject, custommiddleware.RequireAdmin())
			projectsGroup.GET("", catalogHandler.ListProjects)
			projectsGroup.GET("/:id", catalogHandler.GetProject)
			projectsGroup.PUT("/:id", catalogHandler.UpdateProject, custommiddleware.RequireAdmin())
			projectsGroup.DELETE("/:id", catalogHandler.DeleteProject, custommiddleware.RequireAdmin())
		}

		developersGroup := protected.Group("/developers")
		{
			developersGroup.POST("", catalogHandler.CreateDeveloper, custommiddleware.RequireAdmin())
			developersGroup.GET("", catalogHandler.ListDevelopers)
			developersGroup.GET("/:id", catalogHandler.GetDeveloper)
			developersGroup.PUT("/:id", catalogHandler.UpdateDeveloper, custommiddleware.RequireAdmin())
			developersGroup.DELETE("/:id", catalogHandler.DeleteDeveloper, custommiddleware.RequireAdmin())
		}

		locationsGroup := protected.Group("/locations")
		{
			locationsGroup.POST("", catalogHandler.CreateLocation, custommiddleware.RequireAdmin())
			locationsGroup.GET("", catalogHandler.ListLocations)
			locationsGroup.GET("/:id", catalogHandler.GetLocation)
			locationsGroup.PUT("/:id", catalogHandler.UpdateLocation, custommiddleware.RequireAdmin())
			locationsGroup.DELETE("/:id", catalogHandler.DeleteLocation, custommiddleware.RequireAdmin())
		}

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(custommiddleware.RequireAdmin())
		{
			adminGroup.GET("/users", userHandler.List)
			adminGroup.GET("/users/:id", userHandler.Get)
			adminGroup.PATCH("/users/:id/active", userHandler.SetActive)
			adminGroup.PATCH("/users/:id/role", userHandler.SetRole)
			adminGroup.POST("/leads/recalculate-scores", scoringHandler.RecalculateAll)
		}
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 EstateDesk API starting on %s", address)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}
	log.Println("✅ Server gracefully stopped")
}
