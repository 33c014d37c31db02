package engine

import (
	"context"
	"testing"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bestOf(t *testing.T, scores []domain.ModelScore) domain.ModelScore {
	t.Helper()
	for _, s := range scores {
		if s.Best {
			return s
		}
	}
	t.Fatal("no winning score marked")
	return domain.ModelScore{}
}

// backtestSeries builds 21 periods where last week repeats the week before
// exactly, making the baseline MAE zero; the two weeks before that are
// offset by a constant to give a known non-zero error when shifted.
func offsetWeeksSeries(offset float64) domain.DemandSeries {
	units := make([]float64, 0, 21)
	for i := 0; i < 7; i++ {
		units = append(units, 20)
	}
	for i := 0; i < 7; i++ {
		units = append(units, 20+offset)
	}
	for i := 0; i < 7; i++ {
		units = append(units, 20+offset)
	}
	return dailySeries(21, units...)
}

func TestSelector_BaselineMAE(t *testing.T) {
	s := NewSelector(testParams(t), nil, nil)

	// Week [0,7) predicts week [7,14): constant offset 5 between them.
	est, err := s.baselineMAE(offsetWeeksSeries(5))
	require.NoError(t, err)
	mae, ok := est.Value()
	require.True(t, ok)
	assert.InDelta(t, 5.0, mae, 1e-9)
}

func TestSelector_BaselineStdDevProxyUnder21Periods(t *testing.T) {
	s := NewSelector(testParams(t), nil, nil)

	series := dailySeries(15, 2, 4, 4, 4, 5, 5, 7, 9)
	est, err := s.baselineMAE(series)
	require.NoError(t, err)
	mae, ok := est.Value()
	require.True(t, ok)
	assert.InDelta(t, sampleStdDev(series), mae, 1e-9)
}

func TestSelector_SkipsPairsUnder14Periods(t *testing.T) {
	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/SKU-1": dailySeries(13, 10),
	}}
	s := NewSelector(testParams(t), sales, &fakeModelErrors{})

	_, err := s.Evaluate(context.Background(), "S001", "SKU-1")
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestSelector_PicksLowestError(t *testing.T) {
	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/SKU-1": offsetWeeksSeries(5), // baseline MAE 5.0
	}}
	modelErrors := &fakeModelErrors{errors: map[string]map[string]float64{
		"S001/SKU-1": {"prophet": 6.2, "xgboost": 3.1},
	}}
	s := NewSelector(testParams(t), sales, modelErrors)

	scores, err := s.Evaluate(context.Background(), "S001", "SKU-1")
	require.NoError(t, err)
	require.Len(t, scores, 3)

	winner := bestOf(t, scores)
	assert.Equal(t, "xgboost", winner.Model)
	assert.InDelta(t, 3.1, winner.MAE, 1e-9)
}

func TestSelector_TieBrokenByPreferenceOrder(t *testing.T) {
	// Baseline 5.0, prophet 4.9, xgboost 4.9: prophet comes first in the
	// preference order and must win deterministically.
	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/SKU-1": offsetWeeksSeries(5),
	}}
	modelErrors := &fakeModelErrors{errors: map[string]map[string]float64{
		"S001/SKU-1": {"prophet": 4.9, "xgboost": 4.9},
	}}
	s := NewSelector(testParams(t), sales, modelErrors)

	for i := 0; i < 10; i++ {
		scores, err := s.Evaluate(context.Background(), "S001", "SKU-1")
		require.NoError(t, err)
		assert.Equal(t, "prophet", bestOf(t, scores).Model)
	}
}

func TestSelector_ModelTyingBaselineStillWins(t *testing.T) {
	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/SKU-1": offsetWeeksSeries(5), // baseline MAE 5.0
	}}
	modelErrors := &fakeModelErrors{errors: map[string]map[string]float64{
		"S001/SKU-1": {"xgboost": 5.0},
	}}
	s := NewSelector(testParams(t), sales, modelErrors)

	scores, err := s.Evaluate(context.Background(), "S001", "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, "xgboost", bestOf(t, scores).Model)
}

func TestSelector_BaselineWinsWithoutCompetition(t *testing.T) {
	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/SKU-1": offsetWeeksSeries(5),
	}}
	s := NewSelector(testParams(t), sales, &fakeModelErrors{})

	scores, err := s.Evaluate(context.Background(), "S001", "SKU-1")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, domain.BaselineModel, bestOf(t, scores).Model)
}

func TestSelector_AuditRetainsEveryCandidate(t *testing.T) {
	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/SKU-1": offsetWeeksSeries(5),
	}}
	modelErrors := &fakeModelErrors{errors: map[string]map[string]float64{
		"S001/SKU-1": {"prophet": 6.2, "xgboost": 3.1, "lightgbm": 4.4},
	}}
	s := NewSelector(testParams(t), sales, modelErrors)

	scores, err := s.Evaluate(context.Background(), "S001", "SKU-1")
	require.NoError(t, err)
	require.Len(t, scores, 4)

	models := make([]string, len(scores))
	for i, sc := range scores {
		models[i] = sc.Model
	}
	// Preference order first, unknown extras alphabetical, baseline last.
	assert.Equal(t, []string{"prophet", "xgboost", "lightgbm", domain.BaselineModel}, models)

	winners := 0
	for _, sc := range scores {
		if sc.Best {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestSelector_EvaluateAllSkipsAndCollects(t *testing.T) {
	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/FULL":  offsetWeeksSeries(5),
		"S001/THIN":  dailySeries(5, 10),
		"S001/BROKE": dailySeries(21, -1),
	}}
	modelErrors := &fakeModelErrors{errors: map[string]map[string]float64{
		"S001/FULL": {"prophet": 2.0},
	}}
	s := NewSelector(testParams(t), sales, modelErrors)

	scores, failures := s.EvaluateAll(context.Background(), []domain.Pair{
		{StoreID: "S001", SKU: "FULL"},
		{StoreID: "S001", SKU: "THIN"},
		{StoreID: "S001", SKU: "BROKE"},
	})

	require.Len(t, scores, 2) // prophet + baseline for FULL only
	require.Len(t, failures, 1)
	assert.Equal(t, "BROKE", failures[0].SKU)
}
