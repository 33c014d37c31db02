package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/andresuchdata/demandiq/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type inventoryRepository struct {
	db *sqlx.DB
}

func NewInventoryRepository(db *sqlx.DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) GetSnapshot(ctx context.Context, storeID, sku string) (*domain.InventorySnapshot, error) {
	query := `
		SELECT store_id, sku, current_stock, lead_time_days
		FROM inventory
		WHERE store_id = $1 AND sku = $2
	`

	var snap domain.InventorySnapshot
	err := r.db.GetContext(ctx, &snap, query, storeID, sku)
	if errors.Is(err, sql.ErrNoRows) {
		// Missing snapshot is an expected condition, not a failure.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting inventory snapshot: %w", err)
	}

	return &snap, nil
}
