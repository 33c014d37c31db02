// backend-go/internal/repository/model_score_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
)

// ModelScoreRepository persists the selection audit table. GetWinner
// returns "" when no selection has been run for the pair.
type ModelScoreRepository interface {
	Replace(ctx context.Context, scores []domain.ModelScore) error
	GetWinner(ctx context.Context, storeID, sku string) (string, error)
	ListScores(ctx context.Context, filter domain.ScoreFilter) ([]domain.ModelScore, error)
}
