package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "suprigest/docs" // This is for Swagger
	"suprigest/internal/auth"
	"suprigest/internal/config"
	"suprigest/internal/database"
	"suprigest/internal/handlers"
	"suprigest/internal/logger"
	"suprigest/internal/middleware"
	"suprigest/internal/repository"
	"suprigest/internal/scheduler"
	"suprigest/internal/service"
	"suprigest/internal/webhook"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title SupriGest API
// @version 1.0
// @description Backend API for reviewing premature supply return justifications
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@suprigest.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level: cfg.Log.Level,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		err := db.Close()
		if err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)
	justificationRepo := repository.NewJustificationRepository(db.DB)
	settingsRepo := repository.NewSettingsRepository(db.DB)

	// Initialize services
	authService, err := auth.NewService(&cfg.JWT)
	if err != nil {
		slog.Error("Failed to initialize auth service", "error", err)
		os.Exit(1)
	}
	authSvc := service.NewAuthService(userRepo, sessionRepo, authService)
	dispatcher := webhook.NewDispatcher(settingsRepo)
	metricsService := service.NewMetricsService()
	reviewService := service.NewReviewService(justificationRepo, dispatcher)

	// Initialize scheduler
	schedulerService := scheduler.NewScheduler(justificationRepo, dispatcher, &cfg.Digest)
	schedulerService.Start()
	defer schedulerService.Stop()

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService, sessionRepo)
	roleGate := middleware.NewRoleGate(userRepo, cfg.Admin.Emails)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	auditMw := middleware.NewAuditMiddleware(db.DB)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc, roleGate, auditMw)
	userHandler := handlers.NewUserHandler(userRepo, authService, roleGate, auditMw)
	auditHandler := handlers.NewAuditHandler(auditRepo)
	justificationHandler := handlers.NewJustificationHandler(justificationRepo, reviewService, auditMw)
	dashboardHandler := handlers.NewDashboardHandler(justificationRepo, metricsService)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo, auditMw)

	// Setup router
	mux := http.NewServeMux()

	// Auth routes (public)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.RefreshToken)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)

	// Profile
	mux.Handle("GET /api/v1/users/profile", authMw.Authenticate(http.HandlerFunc(userHandler.GetProfile)))

	// Justification records (reading requires authentication only)
	mux.Handle("GET /api/v1/justifications", authMw.Authenticate(http.HandlerFunc(justificationHandler.ListRecords)))
	mux.Handle("GET /api/v1/justifications/{id}", authMw.Authenticate(http.HandlerFunc(justificationHandler.GetRecord)))
	mux.Handle("GET /api/v1/justifications/{id}/download", authMw.Authenticate(http.HandlerFunc(justificationHandler.GetDownload)))

	// Review decisions
	mux.Handle("POST /api/v1/justifications/{id}/approve",
		authMw.Authenticate(
			roleGate.RequireRole("analista", "admin_master")(
				http.HandlerFunc(justificationHandler.ApproveRecord),
			),
		),
	)
	mux.Handle("POST /api/v1/justifications/{id}/reject",
		authMw.Authenticate(
			roleGate.RequireRole("analista", "admin_master")(
				http.HandlerFunc(justificationHandler.RejectRecord),
			),
		),
	)

	// Dashboard
	mux.Handle("GET /api/v1/dashboard/metrics", authMw.Authenticate(http.HandlerFunc(dashboardHandler.GetMetrics)))

	// Settings (admin_master only)
	mux.Handle("GET /api/v1/admin/settings",
		authMw.Authenticate(
			roleGate.RequireRole("admin_master")(
				http.HandlerFunc(settingsHandler.GetSettings),
			),
		),
	)
	mux.Handle("PUT /api/v1/admin/settings",
		authMw.Authenticate(
			roleGate.RequireRole("admin_master")(
				http.HandlerFunc(settingsHandler.UpdateSettings),
			),
		),
	)

	// User administration
	mux.Handle("GET /api/v1/admin/users",
		authMw.Authenticate(
			roleGate.RequireRole("supervisor", "admin_master")(
				http.HandlerFunc(userHandler.ListUsers),
			),
		),
	)
	mux.Handle("POST /api/v1/admin/users",
		authMw.Authenticate(
			roleGate.RequireRole("supervisor", "admin_master")(
				http.HandlerFunc(userHandler.CreateUser),
			),
		),
	)
	mux.Handle("PUT /api/v1/admin/users/{id}",
		authMw.Authenticate(
			roleGate.RequireRole("supervisor", "admin_master")(
				http.HandlerFunc(userHandler.UpdateUser),
			),
		),
	)
	mux.Handle("POST /api/v1/admin/users/{id}/inactivate",
		authMw.Authenticate(
			roleGate.RequireRole("supervisor", "admin_master")(
				http.HandlerFunc(userHandler.InactivateUser),
			),
		),
	)

	// Audit logs (admin_master only)
	mux.Handle("GET /api/v1/admin/audit-logs",
		authMw.Authenticate(
			roleGate.RequireRole("admin_master")(
				http.HandlerFunc(auditHandler.ListAuditLogs),
			),
		),
	)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, err := w.Write([]byte(`{"status":"unhealthy","database":"error"}`))
			if err != nil {
				slog.Error("Failed to write health check response", "error", err)
				return
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{"status":"healthy","version":"` + cfg.App.Version + `"}`))
		if err != nil {
			slog.Error("Failed to write health check response", "error", err)
			return
		}
	})

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(mux),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
