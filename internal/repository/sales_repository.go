// backend-go/internal/repository/sales_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
)

// SalesRepository reads cleaned sales history. The engine consumes
// GetDemandSeries; ListPairs drives batch sweeps.
type SalesRepository interface {
	GetDemandSeries(ctx context.Context, storeID, sku string) (domain.DemandSeries, error)
	ListPairs(ctx context.Context) ([]domain.Pair, error)
}
