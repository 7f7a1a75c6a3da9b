package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mkessler/panelwerk/internal"
	"github.com/mkessler/panelwerk/internal/erp"
	"github.com/mkessler/panelwerk/internal/export"
	"github.com/mkessler/panelwerk/internal/handler"
	"github.com/mkessler/panelwerk/internal/middleware"
	"github.com/mkessler/panelwerk/internal/postgres"
	"github.com/mkessler/panelwerk/internal/pricing"
	"github.com/mkessler/panelwerk/internal/router"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize quote request store
	store := postgres.NewQuoteRequestStore(pool)

	// Initialize pricing calculator
	calc := pricing.NewCalculator(cfg.Pricing.BasePricePerM2, cfg.Pricing.Currency)
	logger.Info("Pricing calculator initialized",
		"base_price_per_m2", cfg.Pricing.BasePricePerM2,
		"currency", cfg.Pricing.Currency,
	)

	// Initialize ERP client and services
	logger.Info("Initializing ERP client...")
	erpClient, err := erp.NewClient(erp.Config{
		BaseURL:     cfg.ERP.BaseURL,
		CompanyID:   cfg.ERP.CompanyID,
		APIVersion:  cfg.ERP.APIVersion,
		AccessToken: cfg.ERP.AccessToken,
		APIKey:      cfg.ERP.APIKey,
		Timeout:     time.Duration(cfg.ERP.TimeoutSeconds) * time.Second,
		MaxRetries:  cfg.ERP.MaxRetries,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize ERP client: %w", err)
	}
	itemService := erp.NewItemService(erpClient)
	priceService := erp.NewPriceService(itemService, cfg.Pricing.Currency)
	quoteService := erp.NewQuoteService(erpClient)
	logger.Info("ERP client initialized", "base_url", cfg.ERP.BaseURL)

	// Initialize manufacturing document exporter
	exporter := export.NewExporter(export.Options{
		User:         cfg.Export.User,
		MainModel:    cfg.Export.MainModel,
		MaterialCode: cfg.Export.MaterialCode,
		FinishCode:   cfg.Export.FinishCode,
		ColorCode:    cfg.Export.ColorCode,
		ColorName:    cfg.Export.ColorName,
		EdgeCode:     cfg.Export.EdgeCode,
		SecondaryFinishCodes: [2]string{
			cfg.Export.SecondaryFinishCodeA,
			cfg.Export.SecondaryFinishCodeB,
		},
	})

	// Initialize request validation
	validate := validator.New()

	// Initialize handlers
	priceHandler := handler.NewPriceHandler(calc, validate, logger)
	itemHandler := handler.NewItemHandler(itemService, priceService, logger)
	quoteRequestHandler := handler.NewQuoteRequestHandler(store, calc, quoteService, exporter, validate, logger)

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics("panelwerk")

	// Create router and register routes
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		router.Logger(logger),
		middleware.WithRequestLogger(logger),
	)

	// Metrics endpoint (protect via firewall in production)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// API routes behind the bearer token
	api := r.Group(middleware.RequireToken(cfg.APIToken))
	api.Post("/api/price", priceHandler.Preview)
	api.Get("/api/items", itemHandler.List)
	api.Get("/api/items/{number}", itemHandler.Get)
	api.Get("/api/items/{number}/price", itemHandler.Price)
	api.Post("/api/quote-requests", quoteRequestHandler.Create)
	api.Get("/api/quote-requests", quoteRequestHandler.List)
	api.Get("/api/quote-requests/{id}", quoteRequestHandler.Get)
	api.Post("/api/quote-requests/{id}/submit", quoteRequestHandler.Submit)
	api.Get("/api/quote-requests/{id}/export", quoteRequestHandler.Export)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
