package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/demandiq/backend-go/internal/cache"
	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/andresuchdata/demandiq/backend-go/internal/engine"
	"github.com/andresuchdata/demandiq/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// SweepResult summarizes one full recommendation run.
type SweepResult struct {
	Pairs     int                `json:"pairs"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	ByRisk    map[string]int     `json:"by_risk"`
	Failures  []engine.PairError `json:"failures,omitempty"`
}

type RecommendationService struct {
	engine *engine.Engine
	sales  repository.SalesRepository
	repo   repository.RecommendationRepository
	cache  cache.AlertCache
}

func NewRecommendationService(eng *engine.Engine, sales repository.SalesRepository, repo repository.RecommendationRepository, cacheImpl cache.AlertCache) *RecommendationService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAlertCache()
	}
	return &RecommendationService{engine: eng, sales: sales, repo: repo, cache: cacheImpl}
}

// RunSweep recomputes recommendations for every known pair, replaces the
// stored table and invalidates cached reads. Per-pair failures are
// reported in the result, never propagated.
func (s *RecommendationService) RunSweep(ctx context.Context) (*SweepResult, error) {
	pairs, err := s.sales.ListPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pairs: %w", err)
	}

	log.Info().Int("pairs", len(pairs)).Msg("reorder sweep started")

	recs, failures := s.engine.RecommendAll(ctx, pairs)
	if err := s.repo.Replace(ctx, recs); err != nil {
		return nil, fmt.Errorf("storing recommendations: %w", err)
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("reorders: cache invalidation failed")
	}

	result := &SweepResult{
		Pairs:     len(pairs),
		Succeeded: len(recs),
		Failed:    len(failures),
		ByRisk:    map[string]int{},
		Failures:  failures,
	}
	for _, rec := range recs {
		result.ByRisk[string(rec.RiskLevel)]++
	}

	log.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Interface("by_risk", result.ByRisk).
		Msg("reorder sweep completed")

	return result, nil
}

// GetReorder returns the stored recommendation for a pair, or nil when no
// sweep has covered it.
func (s *RecommendationService) GetReorder(ctx context.Context, storeID, sku string) (*domain.Recommendation, error) {
	return s.repo.GetByPair(ctx, storeID, sku)
}

// ListAlerts serves at-risk items, cache-aside.
func (s *RecommendationService) ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.Recommendation, error) {
	if recs, ok, err := s.cache.GetAlerts(ctx, filter); err == nil && ok {
		return recs, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("reorders: cache get alerts failed")
	}

	recs, err := s.repo.ListAlerts(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetAlerts(ctx, filter, recs); err != nil {
		log.Warn().Err(err).Msg("reorders: cache set alerts failed")
	}

	return recs, nil
}

// Summary serves the per-tier recommendation counts, cache-aside.
func (s *RecommendationService) Summary(ctx context.Context) ([]domain.RecommendationSummary, error) {
	if summaries, ok, err := s.cache.GetSummary(ctx); err == nil && ok {
		return summaries, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("reorders: cache get summary failed")
	}

	summaries, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSummary(ctx, summaries); err != nil {
		log.Warn().Err(err).Msg("reorders: cache set summary failed")
	}

	return summaries, nil
}

// ListAll returns every stored recommendation, used by the CSV exporter.
func (s *RecommendationService) ListAll(ctx context.Context) ([]domain.Recommendation, error) {
	return s.repo.ListAll(ctx)
}
