package engine

import (
	"math"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
)

// DemandStdDev computes the sample standard deviation of the most recent
// window observations in the series. The window is anchored at the latest
// period present in the series, not at the current date; periods absent
// from the series are simply not part of the sample.
//
// A no-estimate is returned when fewer than minObs observations fall in
// the window. Negative quantities are rejected: they can never occur in a
// valid demand series.
func DemandStdDev(series domain.DemandSeries, window, minObs int) (Estimate, error) {
	recent := series.Tail(window)
	for _, pt := range recent {
		if pt.Units < 0 {
			return NoEstimate(), invalidInput("units", "negative quantity %v on %s", pt.Units, pt.Date.Format("2006-01-02"))
		}
	}
	if len(recent) < minObs {
		return NoEstimate(), nil
	}
	return EstimateOf(sampleStdDev(recent)), nil
}

// sampleStdDev uses the n-1 divisor, matching the reference statistics.
func sampleStdDev(points domain.DemandSeries) float64 {
	n := float64(len(points))
	var sum float64
	for _, pt := range points {
		sum += pt.Units
	}
	mean := sum / n

	var sq float64
	for _, pt := range points {
		d := pt.Units - mean
		sq += d * d
	}
	return math.Sqrt(sq / (n - 1))
}

// meanUnits is the arithmetic mean of the points' quantities, zero for an
// empty slice.
func meanUnits(points domain.DemandSeries) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, pt := range points {
		sum += pt.Units
	}
	return sum / float64(len(points))
}
