package engine

// Estimate carries a statistic that may be unavailable when the underlying
// history is too thin. The zero value is "no estimate"; callers must check
// Ok before using Value, so an absent figure can never be confused with a
// real zero.
type Estimate struct {
	value float64
	valid bool
}

// EstimateOf wraps a computed value.
func EstimateOf(v float64) Estimate {
	return Estimate{value: v, valid: true}
}

// NoEstimate returns the absent value.
func NoEstimate() Estimate {
	return Estimate{}
}

// Ok reports whether a value is present.
func (e Estimate) Ok() bool {
	return e.valid
}

// Value returns the estimate and whether it is present.
func (e Estimate) Value() (float64, bool) {
	return e.value, e.valid
}

// Or returns the estimate when present, otherwise the fallback.
func (e Estimate) Or(fallback float64) float64 {
	if e.valid {
		return e.value
	}
	return fallback
}
