package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "garage-booking/internal/api/http"
	"garage-booking/internal/cache"
	"garage-booking/internal/config"
	"garage-booking/internal/logger"
	"garage-booking/internal/queue"
	"garage-booking/internal/repository/postgres"
	"garage-booking/internal/security"
	"garage-booking/internal/service"
	"garage-booking/migrations"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	migrate := flag.Bool("migrate", false, "Apply database migrations before serving")
	flag.Parse()

	// A missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting garage booking API...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxOpenConns / 2)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if *migrate {
		if err := migrations.Apply(context.Background(), db); err != nil {
			logger.Error("Failed to apply migrations", "error", err)
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		logger.Info("Database migrations applied")
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.AccessTokenTTL())

	// Catalog cache
	catalogCache := cache.NewNoopCache()
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable, serving catalog uncached", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer client.Close()
			catalogCache = cache.NewRedisCache(client)
			logger.Info("Catalog cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.CacheTTL())
		}
	}

	// Booking events
	publisher := service.NewNoopPublisher()
	if cfg.RabbitMQ.Enabled {
		p, err := queue.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, booking events disabled", "error", err)
		} else {
			defer p.Close()
			publisher = p
			logger.Info("Booking events enabled", "exchange", cfg.RabbitMQ.Exchange)
		}
	}

	// Registration lookups
	var lookup service.VehicleLookup
	if cfg.DVLA.APIKey != "" {
		lookup = service.NewDVLALookup(cfg.DVLA.BaseURL, cfg.DVLA.APIKey, time.Duration(cfg.DVLA.TimeoutSeconds)*time.Second)
	} else {
		logger.Info("No DVLA API key configured, vehicle lookups disabled")
	}

	// Initialize Email Service
	emailSvc := service.NewNoopEmailService()
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	}

	// Initialize Services
	authSvc := service.NewAuthService(store.CustomerRepository, store.StaffRepository, tokenManager)
	bookingSvc := service.NewBookingService(
		store,
		store.BookingRepository,
		store.VehicleRepository,
		store.LedgerRepository,
		lookup,
		emailSvc,
		publisher,
	)
	catalogSvc := service.NewCatalogService(store.CatalogRepository, catalogCache, cfg.CacheTTL())
	inventorySvc := service.NewInventoryService(store.InventoryRepository)

	// Initialize HTTP handlers
	handler := httpapi.NewHandler(authSvc, bookingSvc, catalogSvc, inventorySvc, lookup)
	router := httpapi.NewRouter(handler, tokenManager)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
	)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(cors(router)),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to serve HTTP", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped. Goodbye!")
}
