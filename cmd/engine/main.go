// backend-go/cmd/engine/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/andresuchdata/demandiq/backend-go/internal/cache"
	"github.com/andresuchdata/demandiq/backend-go/internal/config"
	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/andresuchdata/demandiq/backend-go/internal/engine"
	"github.com/andresuchdata/demandiq/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/demandiq/backend-go/internal/service"
	"github.com/andresuchdata/demandiq/backend-go/internal/storage"
	"github.com/andresuchdata/demandiq/backend-go/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// jobs bundles everything a batch command needs. Close must be called
// once the command finishes.
type jobs struct {
	db              *postgres.DB
	recommendations *service.RecommendationService
	selection       *service.SelectionService
}

func (j *jobs) Close() {
	j.db.Close()
}

func newJobs(cfg *config.Config) (*jobs, error) {
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	salesRepo := postgres.NewSalesRepository(db.DB)
	forecastRepo := postgres.NewForecastRepository(db.DB)
	inventoryRepo := postgres.NewInventoryRepository(db.DB)
	recRepo := postgres.NewRecommendationRepository(db)
	scoreRepo := postgres.NewModelScoreRepository(db)

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
		db.Close()
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}

	eng := engine.New(params, engine.Sources{
		Sales:       salesRepo,
		Forecasts:   forecastRepo,
		Inventory:   inventoryRepo,
		ModelErrors: forecastRepo,
		Winners:     scoreRepo,
	})
	selector := engine.NewSelector(params, salesRepo, forecastRepo)

	alertCache, err := cache.NewAlertCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		alertCache = cache.NewNoopAlertCache()
	}

	return &jobs{
		db:              db,
		recommendations: service.NewRecommendationService(eng, salesRepo, recRepo, alertCache),
		selection:       service.NewSelectionService(selector, salesRepo, scoreRepo),
	}, nil
}

func runSweep(c *cli.Context) error {
	cfg := config.Load()
	j, err := newJobs(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	result, err := j.recommendations.RunSweep(c.Context)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	logger.Log.Info().
		Int("pairs", result.Pairs).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Interface("by_risk", result.ByRisk).
		Msg("Sweep complete")
	for _, f := range result.Failures {
		logger.Log.Warn().Str("store_id", f.StoreID).Str("sku", f.SKU).Err(f.Err).Msg("Pair skipped")
	}
	return nil
}

func runSelect(c *cli.Context) error {
	cfg := config.Load()
	j, err := newJobs(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	result, err := j.selection.RunSelection(c.Context)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}

	logger.Log.Info().
		Int("pairs", result.Pairs).
		Int("scored", result.Scored).
		Int("failed", result.Failed).
		Interface("winners", result.Winners).
		Msg("Selection complete")
	for _, f := range result.Failures {
		logger.Log.Warn().Str("store_id", f.StoreID).Str("sku", f.SKU).Err(f.Err).Msg("Pair skipped")
	}
	return nil
}

func runExport(c *cli.Context) error {
	cfg := config.Load()
	j, err := newJobs(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	store, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to object storage: %w", err)
	}
	exporter := storage.NewExporter(store)

	if !c.Bool("scores-only") {
		recs, err := j.recommendations.ListAll(c.Context)
		if err != nil {
			return fmt.Errorf("failed to load recommendations: %w", err)
		}
		key, err := exporter.ExportRecommendations(c.Context, recs)
		if err != nil {
			return fmt.Errorf("failed to export recommendations: %w", err)
		}
		logger.Log.Info().Str("key", key).Int("rows", len(recs)).Msg("Recommendations exported")
	}

	if !c.Bool("reorders-only") {
		scores, err := j.selection.ListScores(c.Context, domain.ScoreFilter{})
		if err != nil {
			return fmt.Errorf("failed to load model scores: %w", err)
		}
		key, err := exporter.ExportScores(c.Context, scores)
		if err != nil {
			return fmt.Errorf("failed to export model scores: %w", err)
		}
		logger.Log.Info().Str("key", key).Int("rows", len(scores)).Msg("Model scores exported")
	}
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "engine",
		Usage: "Run replenishment batch jobs",
		Commands: []*cli.Command{
			{
				Name:   "sweep",
				Usage:  "Recompute reorder recommendations for every store/SKU pair",
				Action: runSweep,
			},
			{
				Name:   "select",
				Usage:  "Re-evaluate forecaster selection for every store/SKU pair",
				Action: runSelect,
			},
			{
				Name:  "export",
				Usage: "Export stored recommendations and model scores as CSV to object storage",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reorders-only",
						Usage: "Only export reorder recommendations",
					},
					&cli.BoolFlag{
						Name:  "scores-only",
						Usage: "Only export model comparison scores",
					},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
