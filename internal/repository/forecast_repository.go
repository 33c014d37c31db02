// backend-go/internal/repository/forecast_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
)

// ForecastRepository reads stored forecaster output and held-out error
// metrics. Records with dates in the past are never returned; model ""
// matches any forecaster.
type ForecastRepository interface {
	GetForecastRecords(ctx context.Context, storeID, sku, model string, horizonDays int) ([]domain.ForecastRecord, error)
	ListModelErrors(ctx context.Context, storeID, sku string) (map[string]float64, error)
}
