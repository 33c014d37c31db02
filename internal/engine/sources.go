package engine

import (
	"context"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
)

// Collaborator interfaces the engine consumes. The engine treats every
// call as a single synchronous operation; retries for transient failures
// belong to the orchestrating caller.

// SalesSource provides the ordered demand history for a pair.
type SalesSource interface {
	GetDemandSeries(ctx context.Context, storeID, sku string) (domain.DemandSeries, error)
}

// ForecastSource provides stored forecaster output. An empty model selects
// records from any model; horizonDays limits records to future periods
// within that many days of now.
type ForecastSource interface {
	GetForecastRecords(ctx context.Context, storeID, sku, model string, horizonDays int) ([]domain.ForecastRecord, error)
}

// InventorySource provides the current stock snapshot for a pair. A nil
// snapshot with nil error means no snapshot exists; the engine then
// assumes zero stock and the default lead time.
type InventorySource interface {
	GetSnapshot(ctx context.Context, storeID, sku string) (*domain.InventorySnapshot, error)
}

// ModelErrorSource provides the precomputed held-out error per forecaster
// for a pair, keyed by model name. The engine never trains models; it only
// compares these already-computed values.
type ModelErrorSource interface {
	ListModelErrors(ctx context.Context, storeID, sku string) (map[string]float64, error)
}

// WinnerSource reports which forecaster won selection for a pair, or ""
// when no selection has been run.
type WinnerSource interface {
	GetWinner(ctx context.Context, storeID, sku string) (string, error)
}

// Sources bundles the collaborators a full engine needs. Winners is
// optional; without it the resolver considers records from any model.
type Sources struct {
	Sales       SalesSource
	Forecasts   ForecastSource
	Inventory   InventorySource
	ModelErrors ModelErrorSource
	Winners     WinnerSource
}
