package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/andresuchdata/demandiq/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type recommendationRepository struct {
	db *DB
}

func NewRecommendationRepository(db *DB) repository.RecommendationRepository {
	return &recommendationRepository{db: db}
}

// Replace swaps the whole table: every sweep recomputes every pair, so a
// truncate-and-insert inside one transaction keeps readers consistent.
func (r *recommendationRepository) Replace(ctx context.Context, recs []domain.Recommendation) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "TRUNCATE reorder_recommendations"); err != nil {
			return fmt.Errorf("error truncating recommendations: %w", err)
		}

		if len(recs) == 0 {
			return nil
		}

		query := `
			INSERT INTO reorder_recommendations
				(store_id, sku, current_stock, forecasted_demand, safety_stock, order_qty, risk_level, generated_at)
			VALUES
				(:store_id, :sku, :current_stock, :forecasted_demand, :safety_stock, :order_qty, :risk_level, :generated_at)
		`
		if _, err := tx.NamedExecContext(ctx, query, recs); err != nil {
			return fmt.Errorf("error inserting recommendations: %w", err)
		}
		return nil
	})
}

func (r *recommendationRepository) GetByPair(ctx context.Context, storeID, sku string) (*domain.Recommendation, error) {
	query := `
		SELECT store_id, sku, current_stock, forecasted_demand, safety_stock, order_qty, risk_level, generated_at
		FROM reorder_recommendations
		WHERE store_id = $1 AND sku = $2
	`

	var rec domain.Recommendation
	err := r.db.GetContext(ctx, &rec, query, storeID, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting recommendation: %w", err)
	}

	return &rec, nil
}

func (r *recommendationRepository) ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.Recommendation, error) {
	query := `
		SELECT store_id, sku, current_stock, forecasted_demand, safety_stock, order_qty, risk_level, generated_at
		FROM reorder_recommendations
		WHERE 1=1
	`

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.RiskLevel != "" {
		conditions = append(conditions, fmt.Sprintf("risk_level = $%d", argCounter))
		args = append(args, filter.RiskLevel)
		argCounter++
	} else {
		// Default alert view: only items at risk.
		conditions = append(conditions, "risk_level IN ('HIGH', 'MED')")
	}

	if len(filter.StoreIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("store_id = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.StoreIDs))
		argCounter++
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	// Most urgent first, then largest order need.
	query += `
		ORDER BY CASE risk_level WHEN 'HIGH' THEN 0 WHEN 'MED' THEN 1 ELSE 2 END,
		         order_qty DESC, store_id, sku
	`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCounter)
		args = append(args, filter.Limit)
	}

	var recs []domain.Recommendation
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("error listing alerts: %w", err)
	}

	return recs, nil
}

func (r *recommendationRepository) Summary(ctx context.Context) ([]domain.RecommendationSummary, error) {
	query := `
		SELECT risk_level, COUNT(*) as count
		FROM reorder_recommendations
		GROUP BY risk_level
		ORDER BY CASE risk_level WHEN 'HIGH' THEN 0 WHEN 'MED' THEN 1 ELSE 2 END
	`

	var summaries []domain.RecommendationSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("error getting recommendation summary: %w", err)
	}

	return summaries, nil
}

func (r *recommendationRepository) ListAll(ctx context.Context) ([]domain.Recommendation, error) {
	query := `
		SELECT store_id, sku, current_stock, forecasted_demand, safety_stock, order_qty, risk_level, generated_at
		FROM reorder_recommendations
		ORDER BY store_id, sku
	`

	var recs []domain.Recommendation
	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("error listing recommendations: %w", err)
	}

	return recs, nil
}
