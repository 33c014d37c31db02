package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/andresuchdata/demandiq/backend-go/internal/engine"
	"github.com/andresuchdata/demandiq/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSales struct{}

func (stubSales) ListPairs(ctx context.Context) ([]domain.Pair, error) { return nil, nil }
func (stubSales) GetDemandSeries(ctx context.Context, storeID, sku string) (domain.DemandSeries, error) {
	return nil, nil
}

type stubRecRepo struct {
	byPair map[string]*domain.Recommendation
	alerts []domain.Recommendation
}

func (s *stubRecRepo) Replace(ctx context.Context, recs []domain.Recommendation) error { return nil }

func (s *stubRecRepo) GetByPair(ctx context.Context, storeID, sku string) (*domain.Recommendation, error) {
	return s.byPair[storeID+"/"+sku], nil
}

func (s *stubRecRepo) ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.Recommendation, error) {
	out := s.alerts
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *stubRecRepo) Summary(ctx context.Context) ([]domain.RecommendationSummary, error) {
	return []domain.RecommendationSummary{{RiskLevel: domain.RiskHigh, Count: len(s.alerts)}}, nil
}

func (s *stubRecRepo) ListAll(ctx context.Context) ([]domain.Recommendation, error) {
	return s.alerts, nil
}

func newTestRouter(t *testing.T, repo *stubRecRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	params, err := engine.NewParams(engine.DefaultParams())
	require.NoError(t, err)
	eng := engine.New(params, engine.Sources{})

	services := &Services{
		Recommendations: service.NewRecommendationService(eng, stubSales{}, repo, nil),
	}
	return NewRouter(services, nil)
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubRecRepo{})
	w := doRequest(router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetReorderFound(t *testing.T) {
	repo := &stubRecRepo{byPair: map[string]*domain.Recommendation{
		"S001/SKU-0001": {
			StoreID:          "S001",
			SKU:              "SKU-0001",
			CurrentStock:     130,
			ForecastedDemand: 280,
			SafetyStock:      26.07,
			OrderQty:         176,
			RiskLevel:        domain.RiskMed,
			GeneratedAt:      time.Now().UTC(),
		},
	}}
	router := newTestRouter(t, repo)

	w := doRequest(router, http.MethodGet, "/api/v1/reorder/S001/SKU-0001")
	require.Equal(t, http.StatusOK, w.Code)

	var rec domain.Recommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, 176, rec.OrderQty)
	assert.Equal(t, domain.RiskMed, rec.RiskLevel)
}

func TestGetReorderNotFound(t *testing.T) {
	router := newTestRouter(t, &stubRecRepo{})
	w := doRequest(router, http.MethodGet, "/api/v1/reorder/S001/NOPE")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAlertsRejectsBadRiskLevel(t *testing.T) {
	router := newTestRouter(t, &stubRecRepo{})
	w := doRequest(router, http.MethodGet, "/api/v1/alerts?risk_level=SEVERE")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAlertsAppliesLimit(t *testing.T) {
	repo := &stubRecRepo{}
	for i := 0; i < 5; i++ {
		repo.alerts = append(repo.alerts, domain.Recommendation{
			StoreID: "S001", SKU: "SKU", RiskLevel: domain.RiskHigh,
		})
	}
	router := newTestRouter(t, repo)

	w := doRequest(router, http.MethodGet, "/api/v1/alerts?limit=3")
	require.Equal(t, http.StatusOK, w.Code)

	var recs []domain.Recommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	assert.Len(t, recs, 3)
}

func TestGetAlertsEmptyIsJSONArray(t *testing.T) {
	router := newTestRouter(t, &stubRecRepo{})
	w := doRequest(router, http.MethodGet, "/api/v1/alerts")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestGetSummary(t *testing.T) {
	repo := &stubRecRepo{alerts: []domain.Recommendation{{StoreID: "S001"}}}
	router := newTestRouter(t, repo)

	w := doRequest(router, http.MethodGet, "/api/v1/reorders/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var summaries []domain.RecommendationSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, domain.RiskHigh, summaries[0].RiskLevel)
}

func TestRunSweepEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubRecRepo{})

	w := doRequest(router, http.MethodPost, "/api/v1/reorders/run")
	require.Equal(t, http.StatusOK, w.Code)

	var result service.SweepResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Pairs)
}
