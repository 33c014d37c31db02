package service

import (
	"context"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/andresuchdata/demandiq/backend-go/internal/engine"
	"github.com/andresuchdata/demandiq/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

type ForecastService struct {
	forecasts repository.ForecastRepository
	winners   repository.ModelScoreRepository
	resolver  *engine.Resolver
}

func NewForecastService(forecasts repository.ForecastRepository, winners repository.ModelScoreRepository, resolver *engine.Resolver) *ForecastService {
	return &ForecastService{forecasts: forecasts, winners: winners, resolver: resolver}
}

// GetForecast returns the per-day stored predictions for the pair over the
// horizon, preferring the selection winner's records when one exists.
func (s *ForecastService) GetForecast(ctx context.Context, storeID, sku string, days int) ([]domain.ForecastRecord, error) {
	model := ""
	if s.winners != nil {
		winner, err := s.winners.GetWinner(ctx, storeID, sku)
		if err != nil {
			log.Warn().Err(err).Str("store_id", storeID).Str("sku", sku).
				Msg("forecast: winner lookup failed")
		} else if winner != domain.BaselineModel {
			model = winner
		}
	}

	records, err := s.forecasts.GetForecastRecords(ctx, storeID, sku, model, days)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 && model != "" {
		records, err = s.forecasts.GetForecastRecords(ctx, storeID, sku, "", days)
		if err != nil {
			return nil, err
		}
	}

	// Any-model fetches can interleave several competitors' series; the
	// response is always a single model's records.
	if s.resolver != nil {
		records = s.resolver.SelectModelRecords(records)
	}

	return records, nil
}

// ResolveTotal returns the single demand total the reorder pipeline would
// use for the pair, including the recent-average fallback.
func (s *ForecastService) ResolveTotal(ctx context.Context, storeID, sku string, days int) (float64, error) {
	return s.resolver.Forecast(ctx, storeID, sku, days)
}
