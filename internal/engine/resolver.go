package engine

import (
	"context"
	"math"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Resolver produces a single forecasted demand total for a future horizon.
// The fallback chain is explicit and ordered:
//
//  1. stored forecast records (the selection winner's model when known,
//     any model otherwise), summed over the horizon
//  2. trailing average of the demand series scaled to the horizon
//  3. zero
//
// The result is always clamped to be non-negative; a negative prediction
// is not meaningful demand.
type Resolver struct {
	params    Params
	forecasts ForecastSource
	sales     SalesSource
	winners   WinnerSource
}

// NewResolver builds a resolver. winners may be nil.
func NewResolver(params Params, forecasts ForecastSource, sales SalesSource, winners WinnerSource) *Resolver {
	return &Resolver{params: params, forecasts: forecasts, sales: sales, winners: winners}
}

// Forecast resolves the demand total for the next days periods, loading
// the demand series itself when the fallback is needed.
func (r *Resolver) Forecast(ctx context.Context, storeID, sku string, days int) (float64, error) {
	return r.forecast(ctx, storeID, sku, days, nil)
}

// ForecastWithSeries is Forecast with an already-loaded demand series, so
// batch callers avoid fetching the history twice per pair.
func (r *Resolver) ForecastWithSeries(ctx context.Context, storeID, sku string, days int, series domain.DemandSeries) (float64, error) {
	return r.forecast(ctx, storeID, sku, days, series)
}

func (r *Resolver) forecast(ctx context.Context, storeID, sku string, days int, series domain.DemandSeries) (float64, error) {
	if days <= 0 {
		return 0, invalidInput("days", "horizon must be positive, got %d", days)
	}

	total, ok, err := r.fromStoredForecasts(ctx, storeID, sku, days)
	if err != nil {
		return 0, err
	}
	if ok {
		return math.Max(0, total), nil
	}

	if series == nil && r.sales != nil {
		series, err = r.sales.GetDemandSeries(ctx, storeID, sku)
		if err != nil {
			return 0, err
		}
	}

	recent := series.Tail(r.params.AveragingWindow)
	if len(recent) > 0 {
		return math.Max(0, meanUnits(recent)*float64(days)), nil
	}

	// Neither source yielded data.
	return 0, nil
}

// fromStoredForecasts sums stored predictions over the horizon, preferring
// the selection winner's records when a winner is known for the pair.
func (r *Resolver) fromStoredForecasts(ctx context.Context, storeID, sku string, days int) (float64, bool, error) {
	if r.forecasts == nil {
		return 0, false, nil
	}

	model := ""
	if r.winners != nil {
		winner, err := r.winners.GetWinner(ctx, storeID, sku)
		if err != nil {
			log.Warn().Err(err).Str("store_id", storeID).Str("sku", sku).
				Msg("resolver: winner lookup failed, considering any model")
		} else if winner != domain.BaselineModel {
			model = winner
		}
	}

	records, err := r.forecasts.GetForecastRecords(ctx, storeID, sku, model, days)
	if err != nil {
		return 0, false, err
	}
	if len(records) == 0 && model != "" {
		// The winning model has no future records; fall back to any model
		// before giving up on stored forecasts entirely.
		records, err = r.forecasts.GetForecastRecords(ctx, storeID, sku, "", days)
		if err != nil {
			return 0, false, err
		}
	}
	// An any-model fetch can return several competitors' series for the
	// same horizon. The forecast is one model's demand, never the sum
	// across competitors, so reduce to a single series before totaling.
	records = SingleModelRecords(records, r.params.ModelPreference)
	if len(records) == 0 {
		return 0, false, nil
	}

	var total float64
	for _, rec := range records {
		total += rec.PredictedDemand
	}
	return total, true, nil
}

// SelectModelRecords reduces a possibly mixed-model record set to the
// single series the resolver would total, using the configured model
// preference.
func (r *Resolver) SelectModelRecords(records []domain.ForecastRecord) []domain.ForecastRecord {
	return SingleModelRecords(records, r.params.ModelPreference)
}

// SingleModelRecords returns only one model's records from a set that may
// mix several models' series: the first preference-order model with
// records wins, then the lexicographically first of the rest. A set that
// already holds a single model comes back unchanged.
func SingleModelRecords(records []domain.ForecastRecord, preference []string) []domain.ForecastRecord {
	if len(records) == 0 {
		return records
	}

	models := make(map[string]bool)
	for _, rec := range records {
		models[rec.Model] = true
	}
	if len(models) == 1 {
		return records
	}

	chosen, found := "", false
	for _, model := range preference {
		if models[model] {
			chosen, found = model, true
			break
		}
	}
	if !found {
		for model := range models {
			if !found || model < chosen {
				chosen, found = model, true
			}
		}
	}

	single := make([]domain.ForecastRecord, 0, len(records))
	for _, rec := range records {
		if rec.Model == chosen {
			single = append(single, rec)
		}
	}
	return single
}
