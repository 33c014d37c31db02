// backend-go/cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/demandiq/backend-go/internal/api"
	"github.com/andresuchdata/demandiq/backend-go/internal/cache"
	"github.com/andresuchdata/demandiq/backend-go/internal/config"
	"github.com/andresuchdata/demandiq/backend-go/internal/engine"
	"github.com/andresuchdata/demandiq/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/demandiq/backend-go/internal/service"
	"github.com/andresuchdata/demandiq/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	salesRepo := postgres.NewSalesRepository(db.DB)
	forecastRepo := postgres.NewForecastRepository(db.DB)
	inventoryRepo := postgres.NewInventoryRepository(db.DB)
	recRepo := postgres.NewRecommendationRepository(db)
	scoreRepo := postgres.NewModelScoreRepository(db)

	// Initialize the replenishment engine
	params, err := engine.NewParams(engine.Params{
		ServiceLevel:     cfg.Engine.ServiceLevel,
		LeadTimeDays:     cfg.Engine.LeadTimeDays,
		HorizonDays:      cfg.Engine.HorizonDays,
		VolatilityWindow: cfg.Engine.VolatilityWindow,
		MinObservations:  cfg.Engine.MinObservations,
		AveragingWindow:  cfg.Engine.AveragingWindow,
		FallbackFactor:   cfg.Engine.FallbackFactor,
		ModelPreference:  cfg.Engine.Models,
		Workers:          cfg.Engine.Workers,
	})
	if err != nil {
		log.Fatalf("Invalid engine configuration: %v", err)
	}

	eng := engine.New(params, engine.Sources{
		Sales:       salesRepo,
		Forecasts:   forecastRepo,
		Inventory:   inventoryRepo,
		ModelErrors: forecastRepo,
		Winners:     scoreRepo,
	})
	selector := engine.NewSelector(params, salesRepo, forecastRepo)

	// Initialize cache
	alertCache, err := cache.NewAlertCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		alertCache = cache.NewNoopAlertCache()
	}

	// Initialize services
	services := &api.Services{
		Recommendations: service.NewRecommendationService(eng, salesRepo, recRepo, alertCache),
		Forecasts:       service.NewForecastService(forecastRepo, scoreRepo, eng.Resolver()),
		Selection:       service.NewSelectionService(selector, salesRepo, scoreRepo),
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
