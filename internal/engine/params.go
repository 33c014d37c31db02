package engine

import "math"

// Defaults mirror the reference pipeline configuration.
const (
	DefaultServiceLevel     = 0.95
	DefaultLeadTimeDays     = 7
	DefaultHorizonDays      = 7
	DefaultVolatilityWindow = 30
	DefaultMinObservations  = 7
	DefaultAveragingWindow  = 30
	DefaultFallbackFactor   = 0.2
	DefaultWorkers          = 8

	// Backtest thresholds for the baseline error (see Selector).
	minBacktestPeriods    = 14
	weeklyBacktestPeriods = 21
)

// Params is the immutable configuration shared by every engine component.
// The z-score is derived once from the service level in NewParams, never
// recomputed per call.
type Params struct {
	ServiceLevel     float64  // target probability of not stocking out
	ZScore           float64  // inverse standard-normal CDF at ServiceLevel
	LeadTimeDays     int      // default replenishment lead time
	HorizonDays      int      // forecast horizon for reorder decisions
	VolatilityWindow int      // trailing periods for the demand std dev
	MinObservations  int      // minimum points for a volatility estimate
	AveragingWindow  int      // trailing periods for the fallback average
	FallbackFactor   float64  // safety stock fallback share of forecast
	ModelPreference  []string // tie-break order for selection, best first
	Workers          int      // sweep parallelism
}

// DefaultParams returns the documented defaults with prophet and xgboost
// as the preferred competing forecasters.
func DefaultParams() Params {
	return Params{
		ServiceLevel:     DefaultServiceLevel,
		LeadTimeDays:     DefaultLeadTimeDays,
		HorizonDays:      DefaultHorizonDays,
		VolatilityWindow: DefaultVolatilityWindow,
		MinObservations:  DefaultMinObservations,
		AveragingWindow:  DefaultAveragingWindow,
		FallbackFactor:   DefaultFallbackFactor,
		ModelPreference:  []string{"prophet", "xgboost"},
		Workers:          DefaultWorkers,
	}
}

// NewParams validates p, fills unset optional fields, and derives the
// z-score. Invalid values are rejected here so the per-pair hot path never
// has to re-check them.
func NewParams(p Params) (Params, error) {
	if p.ServiceLevel <= 0 || p.ServiceLevel >= 1 {
		return Params{}, invalidInput("service_level", "must be in (0, 1), got %v", p.ServiceLevel)
	}
	if p.LeadTimeDays <= 0 {
		return Params{}, invalidInput("lead_time_days", "must be positive, got %d", p.LeadTimeDays)
	}
	if p.HorizonDays <= 0 {
		return Params{}, invalidInput("horizon_days", "must be positive, got %d", p.HorizonDays)
	}
	if p.VolatilityWindow <= 0 {
		return Params{}, invalidInput("volatility_window", "must be positive, got %d", p.VolatilityWindow)
	}
	if p.MinObservations < 2 {
		return Params{}, invalidInput("min_observations", "must be at least 2, got %d", p.MinObservations)
	}
	if p.AveragingWindow <= 0 {
		return Params{}, invalidInput("averaging_window", "must be positive, got %d", p.AveragingWindow)
	}
	if p.FallbackFactor < 0 {
		return Params{}, invalidInput("fallback_factor", "must not be negative, got %v", p.FallbackFactor)
	}
	if p.Workers <= 0 {
		p.Workers = DefaultWorkers
	}
	if len(p.ModelPreference) == 0 {
		p.ModelPreference = []string{"prophet", "xgboost"}
	}
	p.ZScore = zScore(p.ServiceLevel)
	return p, nil
}

// zScore is the inverse standard-normal CDF. For p = 0.95 it evaluates to
// approximately 1.645.
func zScore(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
