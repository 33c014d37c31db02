package engine

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory collaborator fakes shared by the engine tests.

type fakeSales struct {
	series map[string]domain.DemandSeries
	err    error
}

func pairKey(storeID, sku string) string { return storeID + "/" + sku }

func (f *fakeSales) GetDemandSeries(_ context.Context, storeID, sku string) (domain.DemandSeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.series[pairKey(storeID, sku)], nil
}

type fakeForecasts struct {
	records map[string][]domain.ForecastRecord // keyed by pair key + ":" + model
}

func (f *fakeForecasts) GetForecastRecords(_ context.Context, storeID, sku, model string, _ int) ([]domain.ForecastRecord, error) {
	if f == nil || f.records == nil {
		return nil, nil
	}
	if model != "" {
		return f.records[pairKey(storeID, sku)+":"+model], nil
	}

	// An empty model matches records from every model, the same contract
	// the repository implements.
	prefix := pairKey(storeID, sku) + ":"
	var keys []string
	for k := range f.records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var all []domain.ForecastRecord
	for _, k := range keys {
		all = append(all, f.records[k]...)
	}
	return all, nil
}

type fakeInventory struct {
	snapshots map[string]*domain.InventorySnapshot
	err       error
}

func (f *fakeInventory) GetSnapshot(_ context.Context, storeID, sku string) (*domain.InventorySnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshots[pairKey(storeID, sku)], nil
}

type fakeModelErrors struct {
	errors map[string]map[string]float64
}

func (f *fakeModelErrors) ListModelErrors(_ context.Context, storeID, sku string) (map[string]float64, error) {
	return f.errors[pairKey(storeID, sku)], nil
}

type fakeWinners struct {
	winners map[string]string
}

func (f *fakeWinners) GetWinner(_ context.Context, storeID, sku string) (string, error) {
	return f.winners[pairKey(storeID, sku)], nil
}

// dailySeries builds n consecutive daily points from the given units,
// cycling through them when n exceeds the slice.
func dailySeries(n int, units ...float64) domain.DemandSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(domain.DemandSeries, n)
	for i := 0; i < n; i++ {
		series[i] = domain.SalesPoint{
			Date:  start.AddDate(0, 0, i),
			Units: units[i%len(units)],
		}
	}
	return series
}

func testParams(t *testing.T) Params {
	t.Helper()
	p, err := NewParams(DefaultParams())
	require.NoError(t, err)
	return p
}

func TestRecommend_FullChain(t *testing.T) {
	params := testParams(t)

	// 30 days of steady demand: mean 40, no variance.
	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/SKU-1": dailySeries(30, 40),
	}}
	inventory := &fakeInventory{snapshots: map[string]*domain.InventorySnapshot{
		"S001/SKU-1": {StoreID: "S001", SKU: "SKU-1", CurrentStock: 150, LeadTimeDays: 7},
	}}

	eng := New(params, Sources{Sales: sales, Forecasts: &fakeForecasts{}, Inventory: inventory})

	rec, err := eng.Recommend(context.Background(), "S001", "SKU-1")
	require.NoError(t, err)

	// No stored forecasts: recent average 40/day over a 7 day horizon.
	assert.InDelta(t, 280.0, rec.ForecastedDemand, 1e-9)
	// Zero variance means zero safety stock.
	assert.InDelta(t, 0.0, rec.SafetyStock, 1e-9)
	assert.Equal(t, 130, rec.OrderQty) // max(0, round(280+0-150))
	assert.Equal(t, domain.RiskMed, rec.RiskLevel)
	assert.Equal(t, 150, rec.CurrentStock)
}

func TestRecommend_SafetyStockFallbackOnThinHistory(t *testing.T) {
	params := testParams(t)

	// 5 observations: below the 7 point minimum for a volatility estimate.
	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/SKU-1": dailySeries(5, 10),
	}}
	inventory := &fakeInventory{snapshots: map[string]*domain.InventorySnapshot{
		"S001/SKU-1": {StoreID: "S001", SKU: "SKU-1", CurrentStock: 20, LeadTimeDays: 7},
	}}

	eng := New(params, Sources{Sales: sales, Forecasts: &fakeForecasts{}, Inventory: inventory})

	rec, err := eng.Recommend(context.Background(), "S001", "SKU-1")
	require.NoError(t, err)

	assert.InDelta(t, 70.0, rec.ForecastedDemand, 1e-9)
	assert.InDelta(t, 14.0, rec.SafetyStock, 1e-9) // 0.2 x forecast
	assert.Equal(t, 64, rec.OrderQty)              // round(70+14-20)
}

func TestRecommend_MissingSnapshotDefaults(t *testing.T) {
	params := testParams(t)

	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/SKU-1": dailySeries(30, 40),
	}}

	eng := New(params, Sources{Sales: sales, Forecasts: &fakeForecasts{}, Inventory: &fakeInventory{}})

	rec, err := eng.Recommend(context.Background(), "S001", "SKU-1")
	require.NoError(t, err)

	assert.Equal(t, 0, rec.CurrentStock)
	assert.Equal(t, 280, rec.OrderQty)
	assert.Equal(t, domain.RiskHigh, rec.RiskLevel)
}

func TestRecommend_RejectsNegativeSnapshot(t *testing.T) {
	params := testParams(t)

	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/SKU-1": dailySeries(30, 40),
	}}
	inventory := &fakeInventory{snapshots: map[string]*domain.InventorySnapshot{
		"S001/SKU-1": {StoreID: "S001", SKU: "SKU-1", CurrentStock: 10, LeadTimeDays: -2},
	}}

	eng := New(params, Sources{Sales: sales, Forecasts: &fakeForecasts{}, Inventory: inventory})

	_, err := eng.Recommend(context.Background(), "S001", "SKU-1")
	var inputErr *InvalidInputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "lead_time_days", inputErr.Field)
}

func TestRecommend_Idempotent(t *testing.T) {
	params := testParams(t)

	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/SKU-1": dailySeries(30, 35, 42, 38, 44, 40, 37, 43),
	}}
	inventory := &fakeInventory{snapshots: map[string]*domain.InventorySnapshot{
		"S001/SKU-1": {StoreID: "S001", SKU: "SKU-1", CurrentStock: 90, LeadTimeDays: 7},
	}}

	eng := New(params, Sources{Sales: sales, Forecasts: &fakeForecasts{}, Inventory: inventory})

	first, err := eng.Recommend(context.Background(), "S001", "SKU-1")
	require.NoError(t, err)
	second, err := eng.Recommend(context.Background(), "S001", "SKU-1")
	require.NoError(t, err)

	first.GeneratedAt, second.GeneratedAt = time.Time{}, time.Time{}
	assert.Equal(t, first, second)
}

func TestRecommendAll_FailuresStayLocal(t *testing.T) {
	params := testParams(t)

	sales := &fakeSales{series: map[string]domain.DemandSeries{
		"S001/GOOD": dailySeries(30, 40),
		"S001/BAD":  {{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Units: -5}},
	}}

	eng := New(params, Sources{Sales: sales, Forecasts: &fakeForecasts{}, Inventory: &fakeInventory{}})

	recs, failures := eng.RecommendAll(context.Background(), []domain.Pair{
		{StoreID: "S001", SKU: "GOOD"},
		{StoreID: "S001", SKU: "BAD"},
	})

	require.Len(t, recs, 1)
	assert.Equal(t, "GOOD", recs[0].SKU)
	require.Len(t, failures, 1)
	assert.Equal(t, "BAD", failures[0].SKU)
	assert.ErrorContains(t, failures[0].Err, "negative quantity")
}

func TestRecommendAll_OrderIndependent(t *testing.T) {
	params := testParams(t)

	series := map[string]domain.DemandSeries{}
	pairs := make([]domain.Pair, 0, 20)
	for _, sku := range []string{"A", "B", "C", "D", "E"} {
		for _, store := range []string{"S004", "S002", "S003", "S001"} {
			series[pairKey(store, sku)] = dailySeries(30, 10, 20, 30)
			pairs = append(pairs, domain.Pair{StoreID: store, SKU: sku})
		}
	}

	eng := New(params, Sources{
		Sales:     &fakeSales{series: series},
		Forecasts: &fakeForecasts{},
		Inventory: &fakeInventory{},
	})

	recs, failures := eng.RecommendAll(context.Background(), pairs)
	require.Empty(t, failures)
	require.Len(t, recs, len(pairs))

	for i := 1; i < len(recs); i++ {
		prev, cur := recs[i-1], recs[i]
		sorted := prev.StoreID < cur.StoreID || (prev.StoreID == cur.StoreID && prev.SKU < cur.SKU)
		assert.True(t, sorted, "results must be sorted by store and SKU")
	}
}

func TestRecommend_SalesSourceFailurePropagates(t *testing.T) {
	params := testParams(t)

	boom := errors.New("connection refused")
	eng := New(params, Sources{
		Sales:     &fakeSales{err: boom},
		Forecasts: &fakeForecasts{},
		Inventory: &fakeInventory{},
	})

	_, err := eng.Recommend(context.Background(), "S001", "SKU-1")
	assert.ErrorIs(t, err, boom)
}
