package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/andresuchdata/demandiq/backend-go/internal/engine"
	"github.com/andresuchdata/demandiq/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// SelectionResult summarizes one forecast selection run.
type SelectionResult struct {
	Pairs    int                `json:"pairs"`
	Scored   int                `json:"scored"`
	Failed   int                `json:"failed"`
	Winners  map[string]int     `json:"winners"`
	Failures []engine.PairError `json:"failures,omitempty"`
}

type SelectionService struct {
	selector *engine.Selector
	sales    repository.SalesRepository
	scores   repository.ModelScoreRepository
}

func NewSelectionService(selector *engine.Selector, sales repository.SalesRepository, scores repository.ModelScoreRepository) *SelectionService {
	return &SelectionService{selector: selector, sales: sales, scores: scores}
}

// RunSelection evaluates every pair, replaces the stored audit table and
// reports the winner breakdown. Pairs with insufficient history are
// skipped, not failed.
func (s *SelectionService) RunSelection(ctx context.Context) (*SelectionResult, error) {
	pairs, err := s.sales.ListPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pairs: %w", err)
	}

	log.Info().Int("pairs", len(pairs)).Msg("forecast selection started")

	scores, failures := s.selector.EvaluateAll(ctx, pairs)
	if err := s.scores.Replace(ctx, scores); err != nil {
		return nil, fmt.Errorf("storing model scores: %w", err)
	}

	result := &SelectionResult{
		Pairs:    len(pairs),
		Failed:   len(failures),
		Winners:  map[string]int{},
		Failures: failures,
	}
	scoredPairs := make(map[domain.Pair]bool)
	for _, score := range scores {
		scoredPairs[domain.Pair{StoreID: score.StoreID, SKU: score.SKU}] = true
		if score.Best {
			result.Winners[score.Model]++
		}
	}
	result.Scored = len(scoredPairs)

	log.Info().
		Int("scored", result.Scored).
		Int("failed", result.Failed).
		Interface("winners", result.Winners).
		Msg("forecast selection completed")

	return result, nil
}

// ListScores returns the stored selection audit table.
func (s *SelectionService) ListScores(ctx context.Context, filter domain.ScoreFilter) ([]domain.ModelScore, error) {
	return s.scores.ListScores(ctx, filter)
}
