package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Exporter writes recommendation and score artifacts as CSV objects, one
// dated snapshot per run.
type Exporter struct {
	store ObjectStorage
}

func NewExporter(store ObjectStorage) *Exporter {
	return &Exporter{store: store}
}

// ExportRecommendations uploads the full recommendation table and returns
// the object key.
func (e *Exporter) ExportRecommendations(ctx context.Context, recs []domain.Recommendation) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"store_id", "sku", "current_stock", "forecasted_demand", "safety_stock", "order_qty", "risk_level"}); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}
	for _, rec := range recs {
		row := []string{
			rec.StoreID,
			rec.SKU,
			strconv.Itoa(rec.CurrentStock),
			strconv.FormatFloat(rec.ForecastedDemand, 'f', 2, 64),
			strconv.FormatFloat(rec.SafetyStock, 'f', 2, 64),
			strconv.Itoa(rec.OrderQty),
			string(rec.RiskLevel),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}

	key := fmt.Sprintf("reorders/%s/reorders.csv", time.Now().UTC().Format("2006-01-02"))
	if err := e.store.UploadObject(ctx, key, buf.Bytes()); err != nil {
		return "", err
	}

	log.Info().Str("key", key).Int("rows", len(recs)).Msg("recommendations exported")
	return key, nil
}

// ExportScores uploads the model selection audit table and returns the
// object key.
func (e *Exporter) ExportScores(ctx context.Context, scores []domain.ModelScore) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"store_id", "sku", "model", "mae", "best"}); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}
	for _, score := range scores {
		row := []string{
			score.StoreID,
			score.SKU,
			score.Model,
			strconv.FormatFloat(score.MAE, 'f', 4, 64),
			strconv.FormatBool(score.Best),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}

	key := fmt.Sprintf("model_scores/%s/model_comparison.csv", time.Now().UTC().Format("2006-01-02"))
	if err := e.store.UploadObject(ctx, key, buf.Bytes()); err != nil {
		return "", err
	}

	log.Info().Str("key", key).Int("rows", len(scores)).Msg("model scores exported")
	return key, nil
}
