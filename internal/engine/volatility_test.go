package engine

import (
	"testing"
	"time"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemandStdDev_SampleStdDev(t *testing.T) {
	// 2, 4, 4, 4, 5, 5, 7, 9: mean 5, sample variance 32/7.
	series := dailySeries(8, 2, 4, 4, 4, 5, 5, 7, 9)

	est, err := DemandStdDev(series, 30, 7)
	require.NoError(t, err)
	sd, ok := est.Value()
	require.True(t, ok)
	assert.InDelta(t, 2.13809, sd, 1e-4)
}

func TestDemandStdDev_InsufficientHistory(t *testing.T) {
	est, err := DemandStdDev(dailySeries(6, 10), 30, 7)
	require.NoError(t, err)
	assert.False(t, est.Ok())

	est, err = DemandStdDev(nil, 30, 7)
	require.NoError(t, err)
	assert.False(t, est.Ok())
}

func TestDemandStdDev_WindowAnchoredAtLatestPeriod(t *testing.T) {
	// 40 points: 30 volatile, then 10 steady. A window of 10 must only see
	// the steady tail regardless of how old the latest period is.
	series := dailySeries(30, 5, 50, 5, 50)
	last := series[len(series)-1].Date
	for i := 1; i <= 10; i++ {
		series = append(series, domain.SalesPoint{Date: last.AddDate(0, 0, i), Units: 20})
	}

	est, err := DemandStdDev(series, 10, 7)
	require.NoError(t, err)
	sd, ok := est.Value()
	require.True(t, ok)
	assert.InDelta(t, 0.0, sd, 1e-9)
}

func TestDemandStdDev_GapsAreNotImputed(t *testing.T) {
	// 8 points spread over a month: gaps reduce the sample, they do not
	// contribute zeros.
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series := make(domain.DemandSeries, 0, 8)
	for i := 0; i < 8; i++ {
		series = append(series, domain.SalesPoint{Date: start.AddDate(0, 0, i*4), Units: 12})
	}

	est, err := DemandStdDev(series, 30, 7)
	require.NoError(t, err)
	sd, ok := est.Value()
	require.True(t, ok)
	assert.InDelta(t, 0.0, sd, 1e-9)
}

func TestDemandStdDev_RejectsNegativeQuantities(t *testing.T) {
	series := dailySeries(10, 5, -3, 8)
	_, err := DemandStdDev(series, 30, 7)

	var inputErr *InvalidInputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "units", inputErr.Field)
}
