package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/solterra/solterra-api/docs" // Swagger docs
	"github.com/solterra/solterra-api/internal/config"
	"github.com/solterra/solterra-api/internal/database"
	"github.com/solterra/solterra-api/internal/handlers"
	"github.com/solterra/solterra-api/internal/jobs"
	"github.com/solterra/solterra-api/internal/middleware"
	"github.com/solterra/solterra-api/internal/repository"
	"github.com/solterra/solterra-api/internal/services"
	"github.com/solterra/solterra-api/internal/storage"
	"github.com/solterra/solterra-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Solterra API
// @version 1.0
// @description REST API for the Solterra real estate sales backend

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, store)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Lead capture (public: landing pages and web forms post here)
		v1.POST("/leads", h.Lead.Capture)

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				// User management
				admin.POST("/users", h.User.Create)
				admin.DELETE("/users/:user_id", h.User.Delete)
				admin.PUT("/users/:user_id/toggle_status", h.User.ToggleStatus)

				// Project management
				admin.POST("/projects", h.Project.Create)
				admin.PUT("/projects/:project_id", h.Project.Update)
				admin.DELETE("/projects/:project_id", h.Project.Delete)
				admin.PUT("/projects/:project_id/toggle_active", h.Project.SetActive)

				// Block management
				admin.POST("/projects/:project_id/blocks", h.Block.Create)
				admin.PUT("/projects/:project_id/blocks/:block_id", h.Block.Update)
				admin.DELETE("/projects/:project_id/blocks/:block_id", h.Block.Delete)
				admin.PUT("/projects/:project_id/blocks/:block_id/toggle_active", h.Block.SetActive)

				// Lot management
				admin.POST("/lots", h.Lot.Create)
				admin.PUT("/lots/:lot_id", h.Lot.Update)
				admin.DELETE("/lots/:lot_id", h.Lot.Delete)
				admin.PUT("/lots/:lot_id/toggle_active", h.Lot.SetActive)

				// Payment reversal
				admin.DELETE("/transactions/:transaction_id", h.Payment.Delete)
			}

			// Supervisor + Admin routes (oversight)
			supervision := protected.Group("")
			supervision.Use(middleware.RequireRole("supervisor", "manager"))
			{
				supervision.GET("/users", h.User.Index)
				supervision.GET("/audits", h.Audit.Index)
				supervision.GET("/jobs/status", h.Job.Status)

				supervision.GET("/dashboard/summary", h.Dashboard.Summary)
				supervision.GET("/dashboard/export/csv", h.Dashboard.ExportCSV)
				supervision.GET("/dashboard/export/xlsx", h.Dashboard.ExportXLSX)
				supervision.GET("/dashboard/export/pdf", h.Dashboard.ExportPDF)

				supervision.POST("/leads/:lead_id/assign", h.Lead.Assign)
			}

			// All authenticated staff
			protected.GET("/users/:user_id", h.User.Show)
			protected.PUT("/users/:user_id", h.User.Update)
			protected.PATCH("/users/:user_id/change_password", h.User.ChangePassword)

			// Clients
			protected.GET("/clients", h.Client.Index)
			protected.GET("/clients/:client_id", h.Client.Show)
			protected.POST("/clients", h.Client.Create)
			protected.PUT("/clients/:client_id", h.Client.Update)

			// Leads
			protected.GET("/leads", h.Lead.Index)
			protected.GET("/leads/:lead_id", h.Lead.Show)
			protected.GET("/leads/:lead_id/quotations", h.Quotation.IndexByLead)
			protected.PUT("/leads/:lead_id/status", h.Lead.ChangeStatus)

			// Inventory viewing
			protected.GET("/projects", h.Project.Index)
			protected.GET("/projects/all", h.Project.All)
			protected.GET("/projects/:project_id", h.Project.Show)
			protected.GET("/projects/:project_id/blocks", h.Block.Index)
			protected.GET("/projects/:project_id/blocks/:block_id", h.Block.Show)
			protected.GET("/lots", h.Lot.Index)
			protected.GET("/lots/:lot_id", h.Lot.Show)

			// Quotations
			protected.GET("/quotations", h.Quotation.Index)
			protected.GET("/quotations/:quotation_id", h.Quotation.Show)
			protected.POST("/quotations", h.Quotation.Create)
			protected.PUT("/quotations/:quotation_id", h.Quotation.Update)
			protected.POST("/quotations/:quotation_id/accept", h.Quotation.Accept)
			protected.POST("/quotations/:quotation_id/cancel", h.Quotation.Cancel)
			protected.GET("/quotations/:quotation_id/pdf", h.Quotation.PDF)

			// Reservations
			protected.GET("/reservations", h.Reservation.Index)
			protected.GET("/reservations/:reservation_id", h.Reservation.Show)
			protected.POST("/reservations", h.Reservation.Create)
			protected.POST("/reservations/:reservation_id/void", h.Reservation.Void)
			protected.GET("/reservations/:reservation_id/schedule", h.Reservation.Schedule)
			protected.GET("/reservations/:reservation_id/quota_status", h.Reservation.QuotaStatus)
			protected.GET("/reservations/:reservation_id/statement_pdf", h.Reservation.StatementPDF)

			// Payments
			protected.GET("/reservations/:reservation_id/transactions", h.Payment.IndexByReservation)
			protected.POST("/reservations/:reservation_id/transactions", h.Payment.Register)
			protected.GET("/transactions/:transaction_id", h.Payment.Show)
			protected.POST("/transactions/:transaction_id/voucher", h.Payment.UploadVoucher)
			protected.GET("/transactions/:transaction_id/voucher", h.Payment.DownloadVoucher)
			protected.GET("/payments/overdue", h.Payment.Overdue)

			// Notifications
			// Static route first so "mark_all_as_read" is not matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
				notifications.POST("/:notification_id/mark_as_read", h.Notification.MarkAsRead)
				notifications.DELETE("/:notification_id", h.Notification.Delete)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Cancel quotations past their validity window every hour
	worker.ScheduleEvery(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Expiring stale quotations...")
		return svcs.Quotation.ExpireStale(ctx)
	})

	// Release reservations that expired without completing payment
	worker.ScheduleEvery(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Releasing expired reservations...")
		return svcs.Reservation.ReleaseExpired(ctx)
	})

	// Warn advisors about reservations expiring within a day
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Notifying expiring reservations...")
		return svcs.Reservation.NotifyExpiring(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}
