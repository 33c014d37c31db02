package service

import (
	"context"
	"testing"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/andresuchdata/demandiq/backend-go/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScoreRepo struct {
	stored []domain.ModelScore
}

func (f *fakeScoreRepo) Replace(ctx context.Context, scores []domain.ModelScore) error {
	f.stored = scores
	return nil
}

func (f *fakeScoreRepo) GetWinner(ctx context.Context, storeID, sku string) (string, error) {
	for _, s := range f.stored {
		if s.StoreID == storeID && s.SKU == sku && s.Best {
			return s.Model, nil
		}
	}
	return "", nil
}

func (f *fakeScoreRepo) ListScores(ctx context.Context, filter domain.ScoreFilter) ([]domain.ModelScore, error) {
	return f.stored, nil
}

type fakeErrorSource struct {
	errs map[domain.Pair]map[string]float64
}

func (f *fakeErrorSource) ListModelErrors(ctx context.Context, storeID, sku string) (map[string]float64, error) {
	return f.errs[domain.Pair{StoreID: storeID, SKU: sku}], nil
}

func TestRunSelectionScoresPairsAndSkipsThinHistory(t *testing.T) {
	pairs := []domain.Pair{
		{StoreID: "S001", SKU: "SKU-0001"},
		{StoreID: "S001", SKU: "SKU-0002"},
		{StoreID: "S001", SKU: "SKU-0003"},
	}
	sales := &fakeSalesRepo{
		pairs: pairs,
		series: map[domain.Pair]domain.DemandSeries{
			pairs[0]: steadySeries(60, 40),
			pairs[1]: steadySeries(60, 5),
			// Too short to backtest; selection must skip it quietly.
			pairs[2]: steadySeries(10, 5),
		},
	}
	errs := &fakeErrorSource{
		errs: map[domain.Pair]map[string]float64{
			pairs[0]: {"prophet": 2.5, "xgboost": 4.0},
			pairs[1]: {"prophet": 1.0},
		},
	}

	params, err := engine.NewParams(engine.DefaultParams())
	require.NoError(t, err)
	selector := engine.NewSelector(params, sales, errs)
	scores := &fakeScoreRepo{}

	svc := NewSelectionService(selector, sales, scores)
	result, err := svc.RunSelection(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Pairs)
	assert.Equal(t, 2, result.Scored)
	assert.Equal(t, 0, result.Failed)

	// Constant demand backtests perfectly, so the baseline wins both pairs.
	assert.Equal(t, map[string]int{domain.BaselineModel: 2}, result.Winners)

	// One row per candidate model plus the baseline, per scored pair.
	assert.Len(t, scores.stored, 5)
	winner, err := scores.GetWinner(context.Background(), "S001", "SKU-0001")
	require.NoError(t, err)
	assert.Equal(t, domain.BaselineModel, winner)
}

func TestListScoresDelegates(t *testing.T) {
	scores := &fakeScoreRepo{stored: []domain.ModelScore{{StoreID: "S001", SKU: "SKU-0001", Model: "prophet", MAE: 2, Best: true}}}
	svc := NewSelectionService(nil, nil, scores)

	out, err := svc.ListScores(context.Background(), domain.ScoreFilter{})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
