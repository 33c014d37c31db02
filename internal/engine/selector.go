package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Selector picks the best forecaster per pair by held-out error. The
// baseline candidate is the naive last-week-repeats forecast, backtested
// one cycle earlier; competing forecasters contribute their precomputed
// stored error. The candidate with the lowest error wins; ties are broken
// by the fixed preference order with the baseline last, so a data-driven
// model that merely ties the naive baseline is still preferred.
type Selector struct {
	params Params
	sales  SalesSource
	errors ModelErrorSource
}

func NewSelector(params Params, sales SalesSource, errors ModelErrorSource) *Selector {
	return &Selector{params: params, sales: sales, errors: errors}
}

// Evaluate scores every candidate for one pair and marks the winner. The
// full candidate list is returned for auditing. Pairs with fewer than 14
// periods of history are skipped with ErrInsufficientHistory.
func (s *Selector) Evaluate(ctx context.Context, storeID, sku string) ([]domain.ModelScore, error) {
	series, err := s.sales.GetDemandSeries(ctx, storeID, sku)
	if err != nil {
		return nil, fmt.Errorf("loading demand series: %w", err)
	}

	baseline, err := s.baselineMAE(series)
	if err != nil {
		return nil, err
	}
	baselineErr, ok := baseline.Value()
	if !ok {
		return nil, fmt.Errorf("%w: %d periods for %s/%s", ErrInsufficientHistory, len(series), storeID, sku)
	}

	stored, err := s.errors.ListModelErrors(ctx, storeID, sku)
	if err != nil {
		return nil, fmt.Errorf("loading model errors: %w", err)
	}

	now := time.Now().UTC()
	scores := make([]domain.ModelScore, 0, len(stored)+1)
	for _, model := range s.candidateOrder(stored) {
		scores = append(scores, domain.ModelScore{
			StoreID:     storeID,
			SKU:         sku,
			Model:       model,
			MAE:         stored[model],
			EvaluatedAt: now,
		})
	}
	scores = append(scores, domain.ModelScore{
		StoreID:     storeID,
		SKU:         sku,
		Model:       domain.BaselineModel,
		MAE:         baselineErr,
		EvaluatedAt: now,
	})

	// Candidates are already in preference order with the baseline last;
	// a strict comparison therefore resolves ties toward the earlier,
	// preferred candidate.
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].MAE < scores[best].MAE {
			best = i
		}
	}
	scores[best].Best = true

	return scores, nil
}

// candidateOrder lists the stored models in the configured preference
// order, with any unknown extras appended alphabetically.
func (s *Selector) candidateOrder(stored map[string]float64) []string {
	order := make([]string, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	for _, model := range s.params.ModelPreference {
		if _, ok := stored[model]; ok && model != domain.BaselineModel {
			order = append(order, model)
			seen[model] = true
		}
	}

	var extras []string
	for model := range stored {
		if !seen[model] && model != domain.BaselineModel {
			extras = append(extras, model)
		}
	}
	sort.Strings(extras)
	return append(order, extras...)
}

// baselineMAE backtests the last-week-repeats forecast: the demand of
// periods [n-21, n-14) predicts periods [n-14, n-7). With under 21 periods
// the whole-series standard deviation serves as a pessimistic error proxy;
// under 14 periods there is no estimate at all.
func (s *Selector) baselineMAE(series domain.DemandSeries) (Estimate, error) {
	n := len(series)
	for _, pt := range series {
		if pt.Units < 0 {
			return NoEstimate(), invalidInput("units", "negative quantity %v on %s", pt.Units, pt.Date.Format("2006-01-02"))
		}
	}
	if n < minBacktestPeriods {
		return NoEstimate(), nil
	}
	if n < weeklyBacktestPeriods {
		return EstimateOf(sampleStdDev(series)), nil
	}

	predicted := series[n-21 : n-14]
	actual := series[n-14 : n-7]
	var sum float64
	for i := range actual {
		diff := actual[i].Units - predicted[i].Units
		if diff < 0 {
			diff = -diff
		}
		sum += diff
	}
	return EstimateOf(sum / float64(len(actual))), nil
}

// EvaluateAll runs selection across pairs in parallel. Pairs without
// enough data are skipped silently; other failures are collected per pair
// and never abort the batch. The returned scores are sorted by store, SKU
// and candidate order, so results are independent of scheduling.
func (s *Selector) EvaluateAll(ctx context.Context, pairs []domain.Pair) ([]domain.ModelScore, []PairError) {
	var (
		mu       sync.Mutex
		scores   []domain.ModelScore
		failures []PairError
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.params.Workers)

	for _, pair := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			pairScores, err := s.Evaluate(ctx, pair.StoreID, pair.SKU)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				scores = append(scores, pairScores...)
			case isInsufficientHistory(err):
				log.Debug().Str("store_id", pair.StoreID).Str("sku", pair.SKU).
					Msg("selection: skipping pair with insufficient history")
			default:
				failures = append(failures, PairError{
					StoreID: pair.StoreID,
					SKU:     pair.SKU,
					Err:     err,
					Message: err.Error(),
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("selection: sweep cancelled")
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].StoreID != scores[j].StoreID {
			return scores[i].StoreID < scores[j].StoreID
		}
		if scores[i].SKU != scores[j].SKU {
			return scores[i].SKU < scores[j].SKU
		}
		return scores[i].Model < scores[j].Model
	})
	sortPairErrors(failures)

	return scores, failures
}
