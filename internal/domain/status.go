// backend-go/internal/domain/status.go
package domain

// RiskLevel is the discrete stockout urgency classification derived from
// days of stock remaining.
type RiskLevel string

const (
	RiskHigh RiskLevel = "HIGH" // under 3 days of stock
	RiskMed  RiskLevel = "MED"  // 3 to under 7 days of stock
	RiskLow  RiskLevel = "LOW"  // 7+ days, or no forecasted demand
)

// Valid reports whether the value is one of the known risk levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskHigh, RiskMed, RiskLow:
		return true
	}
	return false
}

// severity orders risk levels for sorting, most urgent first.
func (r RiskLevel) severity() int {
	switch r {
	case RiskHigh:
		return 0
	case RiskMed:
		return 1
	default:
		return 2
	}
}

// MoreUrgent reports whether r is strictly more urgent than other.
func (r RiskLevel) MoreUrgent(other RiskLevel) bool {
	return r.severity() < other.severity()
}

// BaselineModel is the reserved model name for the naive
// last-week-repeats forecast used during selection.
const BaselineModel = "baseline"
