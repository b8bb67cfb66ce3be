package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"tenantadmin-backend/internal/api"
	"tenantadmin-backend/internal/config"
	"tenantadmin-backend/internal/integration/stripehook"
	"tenantadmin-backend/internal/jobs"
	"tenantadmin-backend/internal/logger"
	"tenantadmin-backend/internal/repository/postgres"
	"tenantadmin-backend/internal/scheduler"
	"tenantadmin-backend/internal/security"
	"tenantadmin-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Tenant Admin Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Services
	authSvc := service.NewAuthService(store.UserRepository)
	companySvc := service.NewCompanyService(store.CompanyRepository, store.UserRepository)
	userSvc := service.NewUserService(store.UserRepository, store.CompanyRepository, cfg.Security.BcryptCost, cfg.Security.PasswordHistorySize)
	reportSvc := service.NewReportService(store.ReportRepository, store.CompanyRepository)
	billingSvc := service.NewBillingService(store.BillingRepository, store.CompanyRepository)
	subscriptionSvc := service.NewSubscriptionService(store.SubscriptionRepository, store.CompanyRepository)
	sessionSvc := service.NewSessionService(store.SessionRepository, store.UserRepository, store.CompanyRepository)

	// Payment provider webhook
	webhook := stripehook.NewHandler(cfg.Stripe.WebhookSecret, billingSvc, subscriptionSvc)

	// HTTP server
	server := api.NewServer(
		tokenManager,
		authSvc,
		companySvc,
		userSvc,
		reportSvc,
		billingSvc,
		subscriptionSvc,
		sessionSvc,
		webhook,
	)

	// Scheduled jobs
	jobRunner := jobs.NewJobRunner(&jobs.Services{
		Session:      sessionSvc,
		Subscription: subscriptionSvc,
	}, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:    cfg.GetServerAddress(),
		Handler: server,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
}
