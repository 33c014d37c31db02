// backend-go/internal/repository/inventory_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
)

// InventoryRepository reads current stock snapshots. A pair without a
// snapshot yields (nil, nil); the engine substitutes zero stock and the
// default lead time.
type InventoryRepository interface {
	GetSnapshot(ctx context.Context, storeID, sku string) (*domain.InventorySnapshot, error)
}
