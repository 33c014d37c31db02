package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/andresuchdata/demandiq/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type forecastRepository struct {
	db *sqlx.DB
}

func NewForecastRepository(db *sqlx.DB) repository.ForecastRepository {
	return &forecastRepository{db: db}
}

func (r *forecastRepository) GetForecastRecords(ctx context.Context, storeID, sku, model string, horizonDays int) ([]domain.ForecastRecord, error) {
	query := `
		SELECT store_id, sku, model, forecast_date, predicted_demand, lower_bound, upper_bound
		FROM forecasts
		WHERE store_id = $1
		  AND sku = $2
		  AND forecast_date >= CURRENT_DATE
		  AND forecast_date < CURRENT_DATE + ($3 || ' days')::interval
	`
	args := []interface{}{storeID, sku, horizonDays}

	if model != "" {
		query += " AND model = $4"
		args = append(args, model)
	}
	query += " ORDER BY forecast_date ASC"

	var records []domain.ForecastRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("error getting forecast records: %w", err)
	}

	return records, nil
}

func (r *forecastRepository) ListModelErrors(ctx context.Context, storeID, sku string) (map[string]float64, error) {
	query := `
		SELECT model, mae
		FROM model_errors
		WHERE store_id = $1 AND sku = $2
	`

	rows, err := r.db.QueryxContext(ctx, query, storeID, sku)
	if err != nil {
		return nil, fmt.Errorf("error listing model errors: %w", err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var model string
		var mae float64
		if err := rows.Scan(&model, &mae); err != nil {
			return nil, fmt.Errorf("error scanning model error: %w", err)
		}
		result[model] = mae
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating model errors: %w", err)
	}

	return result, nil
}
