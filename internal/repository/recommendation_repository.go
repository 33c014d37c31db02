// backend-go/internal/repository/recommendation_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
)

// RecommendationRepository persists sweep output and serves it back to the
// API layer. Replace swaps the whole table in one transaction, since every
// sweep recomputes all pairs from scratch.
type RecommendationRepository interface {
	Replace(ctx context.Context, recs []domain.Recommendation) error
	GetByPair(ctx context.Context, storeID, sku string) (*domain.Recommendation, error)
	ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.Recommendation, error)
	Summary(ctx context.Context) ([]domain.RecommendationSummary, error)
	ListAll(ctx context.Context) ([]domain.Recommendation, error)
}
