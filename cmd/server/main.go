package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ordersync/backend/internal/application/pipeline"
	"github.com/ordersync/backend/internal/domain/identity"
	"github.com/ordersync/backend/internal/domain/status"
	"github.com/ordersync/backend/internal/domain/sync"
	"github.com/ordersync/backend/internal/infrastructure/config"
	"github.com/ordersync/backend/internal/infrastructure/logger"
	"github.com/ordersync/backend/internal/infrastructure/marketplace"
	"github.com/ordersync/backend/internal/infrastructure/persistence"
	"github.com/ordersync/backend/internal/infrastructure/scheduler"
	"github.com/ordersync/backend/internal/interfaces/http/handler"
	"github.com/ordersync/backend/internal/interfaces/http/router"
)

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
		_ = log.Sync()
	}()

	log.Info("Starting order sync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection and run migrations
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected")

	// Build the enabled marketplace adapters
	adapters := buildAdapters(cfg, log)
	if len(adapters) == 0 {
		log.Warn("No marketplace sources enabled")
	}

	// Wire the upsert pipeline
	classifier := status.NewDefaultClassifier()
	resolver := identity.NewResolver(nil)
	uow := persistence.NewGormUnitOfWork(db.DB)
	repos := pipeline.Repositories{
		Geography:       persistence.NewGormGeographyRepository(db.DB),
		Payments:        persistence.NewGormPaymentRepository(db.DB),
		Shipping:        persistence.NewGormShippingRepository(db.DB),
		ProcessingDates: persistence.NewGormProcessingDateRepository(db.DB),
		Statuses:        persistence.NewGormStatusRepository(db.DB),
		Transitions:     persistence.NewGormTransitionRepository(db.DB),
		Details:         persistence.NewGormDetailRepository(db.DB),
	}
	service := pipeline.NewService(uow, repos, classifier, resolver, cfg.Orchestrator.TriggeredByDefault, log)

	// Start the sync orchestrator
	metrics := scheduler.NewMetrics(prometheus.DefaultRegisterer)
	orchestrator, err := scheduler.NewOrchestrator(cfg.Orchestrator, adapters, service, log, metrics)
	if err != nil {
		log.Fatal("Failed to create orchestrator", zap.Error(err))
	}
	if err := orchestrator.Start(context.Background()); err != nil {
		log.Fatal("Failed to start orchestrator", zap.Error(err))
	}
	log.Info("Sync orchestrator started",
		zap.Duration("interval", cfg.Orchestrator.Interval),
		zap.Int("sources", len(adapters)),
	)

	// Assemble the HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	syncHandler := handler.NewSyncHandler(orchestrator, service, adapters, cfg.Orchestrator.PageSize, log)
	router.NewRouter(engine).Register(syncHandler).Setup()
	engine.GET("/healthz", handler.NewHealthHandler(db, orchestrator).Check)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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

	if err := orchestrator.Stop(ctx); err != nil {
		log.Error("Error stopping orchestrator", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildAdapters constructs one adapter per enabled source
func buildAdapters(cfg *config.Config, log *zap.Logger) []sync.SourceAdapter {
	var adapters []sync.SourceAdapter

	if src := cfg.Sources.Shopee; src.Enabled {
		adapter, err := marketplace.NewShopeeAdapter(&marketplace.ShopeeConfig{
			PartnerKey:     src.APIKey,
			ShopID:         src.ShopID,
			BaseURL:        src.BaseURL,
			Timeout:        src.Timeout,
			UserAgent:      src.UserAgent,
			MaxRetries:     cfg.Orchestrator.RetryAttempts,
			RetryBaseDelay: cfg.Orchestrator.RetryBaseDelay,
		})
		if err != nil {
			log.Fatal("Failed to configure Shopee source", zap.Error(err))
		}
		adapters = append(adapters, adapter)
	}

	if src := cfg.Sources.Lazada; src.Enabled {
		adapter, err := marketplace.NewLazadaAdapter(&marketplace.LazadaConfig{
			AppKey:         src.AppKey,
			AppSecret:      src.APIKey,
			BaseURL:        src.BaseURL,
			Timeout:        src.Timeout,
			UserAgent:      src.UserAgent,
			MaxRetries:     cfg.Orchestrator.RetryAttempts,
			RetryBaseDelay: cfg.Orchestrator.RetryBaseDelay,
		})
		if err != nil {
			log.Fatal("Failed to configure Lazada source", zap.Error(err))
		}
		adapters = append(adapters, adapter)
	}

	if src := cfg.Sources.TikTok; src.Enabled {
		adapter, err := marketplace.NewTikTokAdapter(&marketplace.TikTokConfig{
			AppKey:         src.AppKey,
			AppSecret:      src.APIKey,
			AccessToken:    src.AccessToken,
			ShopID:         src.ShopID,
			BaseURL:        src.BaseURL,
			Timeout:        src.Timeout,
			UserAgent:      src.UserAgent,
			MaxRetries:     cfg.Orchestrator.RetryAttempts,
			RetryBaseDelay: cfg.Orchestrator.RetryBaseDelay,
		})
		if err != nil {
			log.Fatal("Failed to configure TikTok Shop source", zap.Error(err))
		}
		adapters = append(adapters, adapter)
	}

	return adapters
}
