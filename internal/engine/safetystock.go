package engine

import "math"

// SafetyStock converts demand volatility into a buffer quantity:
//
//	safety stock = z * sigma * sqrt(lead time)
//
// where z is the precomputed z-score for the configured service level. The
// result is clamped to zero from below. When sigma carries no estimate the
// result carries no estimate either; the caller applies the documented
// fallback of FallbackFactor * forecasted demand instead.
func (p Params) SafetyStock(sigma Estimate, leadTimeDays int) (Estimate, error) {
	if leadTimeDays < 0 {
		return NoEstimate(), invalidInput("lead_time_days", "must not be negative, got %d", leadTimeDays)
	}
	if leadTimeDays == 0 {
		leadTimeDays = p.LeadTimeDays
	}

	s, ok := sigma.Value()
	if !ok {
		return NoEstimate(), nil
	}

	ss := p.ZScore * s * math.Sqrt(float64(leadTimeDays))
	return EstimateOf(math.Max(0, ss)), nil
}
