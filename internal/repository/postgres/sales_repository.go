package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/andresuchdata/demandiq/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type salesRepository struct {
	db *sqlx.DB
}

func NewSalesRepository(db *sqlx.DB) repository.SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) GetDemandSeries(ctx context.Context, storeID, sku string) (domain.DemandSeries, error) {
	query := `
		SELECT date, units
		FROM sales
		WHERE store_id = $1 AND sku = $2
		ORDER BY date ASC
	`

	var series domain.DemandSeries
	if err := r.db.SelectContext(ctx, &series, query, storeID, sku); err != nil {
		return nil, fmt.Errorf("error getting demand series: %w", err)
	}

	return series, nil
}

func (r *salesRepository) ListPairs(ctx context.Context) ([]domain.Pair, error) {
	query := `
		SELECT DISTINCT store_id, sku
		FROM sales
		ORDER BY store_id, sku
	`

	var pairs []domain.Pair
	if err := r.db.SelectContext(ctx, &pairs, query); err != nil {
		return nil, fmt.Errorf("error listing pairs: %w", err)
	}

	return pairs, nil
}
