// Package engine implements the replenishment decision chain: demand
// volatility, safety stock, forecast resolution, reorder quantities and
// risk tiers, plus per-pair forecaster selection. Every component is a
// stateless transform over one (store, SKU) pair; pairs share nothing, so
// batch sweeps parallelize freely and one pair's failure stays local.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Engine assembles reorder recommendations from the collaborator sources.
type Engine struct {
	params   Params
	src      Sources
	resolver *Resolver
}

// New builds an engine. params must come from NewParams.
func New(params Params, src Sources) *Engine {
	return &Engine{
		params:   params,
		src:      src,
		resolver: NewResolver(params, src.Forecasts, src.Sales, src.Winners),
	}
}

// Params returns the engine's immutable configuration.
func (e *Engine) Params() Params {
	return e.params
}

// Resolver exposes the engine's forecast resolver for standalone use.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// Recommend computes one pair's reorder recommendation: load the demand
// series, resolve the forecast, estimate volatility, derive the safety
// stock (or its thin-history fallback), then compute the order quantity
// and risk tier against the current snapshot. A missing snapshot means
// zero stock and the default lead time.
func (e *Engine) Recommend(ctx context.Context, storeID, sku string) (domain.Recommendation, error) {
	series, err := e.src.Sales.GetDemandSeries(ctx, storeID, sku)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("loading demand series: %w", err)
	}

	forecast, err := e.resolver.ForecastWithSeries(ctx, storeID, sku, e.params.HorizonDays, series)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("resolving forecast: %w", err)
	}

	currentStock, leadTime, err := e.currentInventory(ctx, storeID, sku)
	if err != nil {
		return domain.Recommendation{}, err
	}

	sigma, err := DemandStdDev(series, e.params.VolatilityWindow, e.params.MinObservations)
	if err != nil {
		return domain.Recommendation{}, err
	}
	ss, err := e.params.SafetyStock(sigma, leadTime)
	if err != nil {
		return domain.Recommendation{}, err
	}
	// Documented degradation path: without enough history for a
	// volatility estimate, hold back a fixed share of the forecast.
	safetyStock := ss.Or(e.params.FallbackFactor * forecast)

	stock := float64(currentStock)
	return domain.Recommendation{
		StoreID:          storeID,
		SKU:              sku,
		CurrentStock:     currentStock,
		ForecastedDemand: forecast,
		SafetyStock:      safetyStock,
		OrderQty:         OrderQuantity(forecast, safetyStock, stock),
		RiskLevel:        ClassifyRisk(stock, forecast, e.params.HorizonDays),
		GeneratedAt:      time.Now().UTC(),
	}, nil
}

func (e *Engine) currentInventory(ctx context.Context, storeID, sku string) (stock, leadTime int, err error) {
	snap, err := e.src.Inventory.GetSnapshot(ctx, storeID, sku)
	if err != nil {
		return 0, 0, fmt.Errorf("loading inventory snapshot: %w", err)
	}
	if snap == nil {
		return 0, e.params.LeadTimeDays, nil
	}
	if snap.CurrentStock < 0 {
		return 0, 0, invalidInput("current_stock", "must not be negative, got %d", snap.CurrentStock)
	}
	if snap.LeadTimeDays < 0 {
		return 0, 0, invalidInput("lead_time_days", "must not be negative, got %d", snap.LeadTimeDays)
	}
	leadTime = snap.LeadTimeDays
	if leadTime == 0 {
		leadTime = e.params.LeadTimeDays
	}
	return snap.CurrentStock, leadTime, nil
}

// RecommendAll sweeps every pair with bounded parallelism. Per-pair
// failures are collected, never propagated; recommendations come back
// sorted by store and SKU so the result is independent of scheduling.
func (e *Engine) RecommendAll(ctx context.Context, pairs []domain.Pair) ([]domain.Recommendation, []PairError) {
	var (
		mu       sync.Mutex
		recs     []domain.Recommendation
		failures []PairError
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.params.Workers)

	for _, pair := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rec, err := e.Recommend(ctx, pair.StoreID, pair.SKU)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, PairError{
					StoreID: pair.StoreID,
					SKU:     pair.SKU,
					Err:     err,
					Message: err.Error(),
				})
				return nil
			}
			recs = append(recs, rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("engine: sweep cancelled")
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].StoreID != recs[j].StoreID {
			return recs[i].StoreID < recs[j].StoreID
		}
		return recs[i].SKU < recs[j].SKU
	})
	sortPairErrors(failures)

	return recs, failures
}

func sortPairErrors(failures []PairError) {
	sort.Slice(failures, func(i, j int) bool {
		if failures[i].StoreID != failures[j].StoreID {
			return failures[i].StoreID < failures[j].StoreID
		}
		return failures[i].SKU < failures[j].SKU
	})
}

func isInsufficientHistory(err error) bool {
	return errors.Is(err, ErrInsufficientHistory)
}
