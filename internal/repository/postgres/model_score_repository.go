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

type modelScoreRepository struct {
	db *DB
}

func NewModelScoreRepository(db *DB) repository.ModelScoreRepository {
	return &modelScoreRepository{db: db}
}

func (r *modelScoreRepository) Replace(ctx context.Context, scores []domain.ModelScore) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "TRUNCATE model_scores"); err != nil {
			return fmt.Errorf("error truncating model scores: %w", err)
		}

		if len(scores) == 0 {
			return nil
		}

		query := `
			INSERT INTO model_scores (store_id, sku, model, mae, best, evaluated_at)
			VALUES (:store_id, :sku, :model, :mae, :best, :evaluated_at)
		`
		if _, err := tx.NamedExecContext(ctx, query, scores); err != nil {
			return fmt.Errorf("error inserting model scores: %w", err)
		}
		return nil
	})
}

func (r *modelScoreRepository) GetWinner(ctx context.Context, storeID, sku string) (string, error) {
	query := `
		SELECT model
		FROM model_scores
		WHERE store_id = $1 AND sku = $2 AND best = true
	`

	var model string
	err := r.db.GetContext(ctx, &model, query, storeID, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error getting winning model: %w", err)
	}

	return model, nil
}

func (r *modelScoreRepository) ListScores(ctx context.Context, filter domain.ScoreFilter) ([]domain.ModelScore, error) {
	query := `
		SELECT store_id, sku, model, mae, best, evaluated_at
		FROM model_scores
		WHERE 1=1
	`

	var args []interface{}
	var conditions []string
	argCounter := 1

	if len(filter.StoreIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("store_id = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.StoreIDs))
		argCounter++
	}

	if len(filter.SKUs) > 0 {
		conditions = append(conditions, fmt.Sprintf("sku = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.SKUs))
		argCounter++
	}

	if filter.BestOnly {
		conditions = append(conditions, "best = true")
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY store_id, sku, mae ASC"

	var scores []domain.ModelScore
	if err := r.db.SelectContext(ctx, &scores, query, args...); err != nil {
		return nil, fmt.Errorf("error listing model scores: %w", err)
	}

	return scores, nil
}
