// backend-go/internal/domain/models.go
package domain

import "time"

// Pair identifies one (store, SKU) combination, the unit of computation
// throughout the engine.
type Pair struct {
	StoreID string `json:"store_id" db:"store_id"`
	SKU     string `json:"sku" db:"sku"`
}

// SalesPoint is a single observed (date, units sold) record for a pair.
// Quantities are never negative; absent dates are gaps, not zeros.
type SalesPoint struct {
	Date  time.Time `json:"date" db:"date"`
	Units float64   `json:"units" db:"units"`
}

// DemandSeries is the chronologically ordered sales history for one pair.
// It is loaded once per computation and never mutated afterwards.
type DemandSeries []SalesPoint

// Tail returns the most recent n points, anchored at the latest date
// present in the series.
func (s DemandSeries) Tail(n int) DemandSeries {
	if n <= 0 || len(s) == 0 {
		return nil
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// ForecastRecord is a point prediction produced by an external forecaster.
type ForecastRecord struct {
	StoreID         string    `json:"store_id" db:"store_id"`
	SKU             string    `json:"sku" db:"sku"`
	Model           string    `json:"model" db:"model"`
	ForecastDate    time.Time `json:"forecast_date" db:"forecast_date"`
	PredictedDemand float64   `json:"predicted_demand" db:"predicted_demand"`
	LowerBound      *float64  `json:"lower_bound,omitempty" db:"lower_bound"`
	UpperBound      *float64  `json:"upper_bound,omitempty" db:"upper_bound"`
}

// InventorySnapshot is a point-in-time stock fact, externally owned and
// read-only to the engine.
type InventorySnapshot struct {
	StoreID      string `json:"store_id" db:"store_id"`
	SKU          string `json:"sku" db:"sku"`
	CurrentStock int    `json:"current_stock" db:"current_stock"`
	LeadTimeDays int    `json:"lead_time_days" db:"lead_time_days"`
}

// Recommendation is the engine's sole output artifact, recomputed fresh on
// every sweep.
type Recommendation struct {
	StoreID          string    `json:"store_id" db:"store_id"`
	SKU              string    `json:"sku" db:"sku"`
	CurrentStock     int       `json:"current_stock" db:"current_stock"`
	ForecastedDemand float64   `json:"forecasted_demand" db:"forecasted_demand"`
	SafetyStock      float64   `json:"safety_stock" db:"safety_stock"`
	OrderQty         int       `json:"order_qty" db:"order_qty"`
	RiskLevel        RiskLevel `json:"risk_level" db:"risk_level"`
	GeneratedAt      time.Time `json:"generated_at" db:"generated_at"`
}

// ModelScore is one candidate's held-out error for a pair. Every candidate
// evaluated during selection is retained as an audit record; the winning
// row carries Best = true.
type ModelScore struct {
	StoreID     string    `json:"store_id" db:"store_id"`
	SKU         string    `json:"sku" db:"sku"`
	Model       string    `json:"model" db:"model"`
	MAE         float64   `json:"mae" db:"mae"`
	Best        bool      `json:"best" db:"best"`
	EvaluatedAt time.Time `json:"evaluated_at" db:"evaluated_at"`
}

// RecommendationSummary counts recommendations per risk level.
type RecommendationSummary struct {
	RiskLevel RiskLevel `json:"risk_level" db:"risk_level"`
	Count     int       `json:"count" db:"count"`
}

// AlertFilter restricts alert queries.
type AlertFilter struct {
	RiskLevel RiskLevel `json:"risk_level"`
	StoreIDs  []string  `json:"store_ids"`
	Limit     int       `json:"limit"`
}

// ScoreFilter restricts model score queries.
type ScoreFilter struct {
	StoreIDs []string `json:"store_ids"`
	SKUs     []string `json:"skus"`
	BestOnly bool     `json:"best_only"`
}
