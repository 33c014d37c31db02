package engine

import (
	"math"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
)

// Thresholds for the risk classification, in days of stock remaining. The
// MED band is half-open: exactly 3 days is MED, exactly 7 days is LOW.
const (
	highRiskDays = 3
	medRiskDays  = 7
)

// OrderQuantity is the reorder formula:
//
//	order qty = max(0, round(forecast + safety stock - current stock))
//
// It is a pure function of its three inputs.
func OrderQuantity(forecast, safetyStock, currentStock float64) int {
	qty := math.Round(forecast + safetyStock - currentStock)
	if qty < 0 {
		return 0
	}
	return int(qty)
}

// ClassifyRisk derives the urgency tier from days of stock remaining at
// the forecasted demand rate. Zero forecasted demand means no urgency
// regardless of stock level.
func ClassifyRisk(currentStock, forecast float64, horizonDays int) domain.RiskLevel {
	if forecast <= 0 || horizonDays <= 0 {
		return domain.RiskLow
	}

	dailyDemand := forecast / float64(horizonDays)
	if dailyDemand == 0 {
		return domain.RiskLow
	}

	daysOfStock := currentStock / dailyDemand
	switch {
	case daysOfStock < highRiskDays:
		return domain.RiskHigh
	case daysOfStock < medRiskDays:
		return domain.RiskMed
	default:
		return domain.RiskLow
	}
}
