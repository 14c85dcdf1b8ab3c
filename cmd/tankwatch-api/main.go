// Package main is the entry point for the tankwatch-api server.
// It ingests Gasbot telemetry webhooks, maintains the tank fleet state and
// serves a small read-only operational API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tankwatch/tankwatch-api/internal/alerting"
	"github.com/tankwatch/tankwatch-api/internal/config"
	"github.com/tankwatch/tankwatch-api/internal/database"
	"github.com/tankwatch/tankwatch-api/internal/http/handlers"
	"github.com/tankwatch/tankwatch-api/internal/http/mw"
	"github.com/tankwatch/tankwatch-api/internal/logging"
	"github.com/tankwatch/tankwatch-api/internal/repository"
	"github.com/tankwatch/tankwatch-api/internal/service"
	"github.com/tankwatch/tankwatch-api/internal/version"
)

func main() {
	// Initialize logger with TTY detection, source paths, and format control
	logger := logging.SetDefault()

	v := version.Get()
	logger.Info("starting tankwatch-api",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.MigrateWithLogger(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	schemaVersion, err := database.GetLatestSchemaVersion(db)
	if err != nil {
		logger.Warn("failed to get schema version", "error", err)
	} else if schemaVersion != "" {
		migrationCount, _ := database.GetMigrationCount(db)
		logger.Info("database schema ready", "schema_version", schemaVersion, "migrations_applied", migrationCount)
	}

	repos := repository.NewRepositories(db)

	storage, err := service.NewStorageService(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage service", "error", err)
		os.Exit(1)
	}

	// Alert thresholds: S3 overrides when a bucket is configured, otherwise
	// built-in defaults.
	var thresholdsLoader *alerting.ThresholdsLoader
	if storage.IsEnabled() {
		thresholdsLoader = alerting.NewThresholdsLoader(config.S3LoaderConfig{
			S3Client: storage.Client(),
			Bucket:   storage.Bucket(),
			Key:      cfg.ThresholdsKey,
			Logger:   logger,
		})
		logger.Info("S3 threshold overrides enabled",
			"bucket", storage.Bucket(),
			"key", cfg.ThresholdsKey,
			"cache_ttl", "5m",
		)
	}

	alertEngine := alerting.NewEngine(repos.Alert, thresholdsLoader, logger)
	syncLogger := service.NewSyncLogger(repos.SyncLog, logger)
	ingest := service.NewIngestService(repos, alertEngine, syncLogger, logger)

	// Create router
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Request size limit - the vendor batches many records per push
	router.Use(middleware.RequestSize(cfg.MaxBodyBytes))

	// Global rate limit by IP
	router.Use(mw.RateLimitByIP(cfg.RateLimitPerMin))

	// Main API with OpenAPI docs
	humaConfig := huma.DefaultConfig("TankWatch API", version.Get().Short())
	humaConfig.Info.Description = "Fuel tank telemetry ingestion: normalizes Gasbot webhook pushes into locations, assets, readings and threshold alerts."
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.BaseURL, Description: "API Server"},
	}
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:        "http",
			Scheme:      "bearer",
			Description: "Ops API key authentication. Include the key in the Authorization header as `Bearer <key>`.",
		},
	}
	api := humachi.New(router, humaConfig)

	// Config for hidden routes (K8s probes - no docs needed)
	hiddenConfig := huma.DefaultConfig("TankWatch API", version.Get().Short())
	hiddenConfig.DocsPath = ""
	hiddenConfig.OpenAPIPath = ""
	hiddenConfig.SchemasPath = ""
	hiddenAPI := humachi.New(router, hiddenConfig)

	// Config for protected routes (documented by the main API)
	protectedConfig := huma.DefaultConfig("TankWatch API", version.Get().Short())
	protectedConfig.Info.Description = humaConfig.Info.Description
	protectedConfig.Servers = humaConfig.Servers
	protectedConfig.DocsPath = ""
	protectedConfig.OpenAPIPath = ""
	protectedConfig.SchemasPath = ""

	// Health check (public, shown in docs)
	huma.Get(api, "/api/v1/health", handlers.HealthCheck)

	// Kubernetes probes (hidden from docs - internal use only)
	huma.Get(hiddenAPI, "/healthz", handlers.Livez)
	readyzHandler := handlers.NewReadyzHandler(db)
	huma.Get(hiddenAPI, "/readyz", readyzHandler.Readyz)

	// Gasbot webhook: bearer secret checked in constant time before any
	// body is read; rejected pushes leave no sync log row.
	webhookHandler := handlers.NewGasbotWebhookHandler(ingest, cfg.MaxBodyBytes, logger)
	router.Group(func(r chi.Router) {
		r.Use(mw.BearerSecret(cfg.WebhookSecret))
		r.Post("/api/v1/gasbot/webhook", webhookHandler.HandleWebhook)
	})

	// Read-only ops API (fleet state, reading history, alerts, audit trail)
	if cfg.OpsAPIKey != "" {
		router.Group(func(r chi.Router) {
			r.Use(mw.BearerSecret(cfg.OpsAPIKey))

			opsAPI := humachi.New(r, protectedConfig)
			opsHandler := handlers.NewOpsHandler(repos)
			huma.Get(opsAPI, "/api/v1/locations", opsHandler.ListLocations)
			huma.Get(opsAPI, "/api/v1/assets/{id}", opsHandler.GetAsset)
			huma.Get(opsAPI, "/api/v1/assets/{id}/readings", opsHandler.ListReadings)
			huma.Get(opsAPI, "/api/v1/alerts", opsHandler.ListAlerts)
			huma.Get(opsAPI, "/api/v1/sync-logs", opsHandler.ListSyncLogs)
		})
		logger.Info("ops read API enabled")
	} else {
		logger.Warn("OPS_API_KEY not set - ops read API disabled")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		<-sigChan

		logger.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting server", "port", cfg.Port, "base_url", cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
