package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/demandiq/backend-go/internal/config"
	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	alertsKeyPrefix = "reorders:alerts"
	summaryKey      = "reorders:summary"
	alertsScanBatch = 100
)

// AlertCache is a cache-aside layer for the alert and summary reads, the
// two hot endpoints of the dashboard. Sweeps invalidate everything.
type AlertCache interface {
	GetAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.Recommendation, bool, error)
	SetAlerts(ctx context.Context, filter domain.AlertFilter, recs []domain.Recommendation) error
	GetSummary(ctx context.Context) ([]domain.RecommendationSummary, bool, error)
	SetSummary(ctx context.Context, summaries []domain.RecommendationSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisAlertCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAlertCache struct{}

func NewAlertCache(cfg config.CacheConfig) (AlertCache, error) {
	if !cfg.Enabled {
		return &noopAlertCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAlertCache{client: client, ttl: ttl}, nil
}

func NewNoopAlertCache() AlertCache {
	return &noopAlertCache{}
}

func (c *redisAlertCache) GetAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.Recommendation, bool, error) {
	payload, err := c.client.Get(ctx, buildAlertsKey(filter)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var recs []domain.Recommendation
	if err := json.Unmarshal(payload, &recs); err != nil {
		return nil, false, fmt.Errorf("decode alerts cache: %w", err)
	}

	return recs, true, nil
}

func (c *redisAlertCache) SetAlerts(ctx context.Context, filter domain.AlertFilter, recs []domain.Recommendation) error {
	payload, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode alerts cache: %w", err)
	}

	if err := c.client.Set(ctx, buildAlertsKey(filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAlertCache) GetSummary(ctx context.Context) ([]domain.RecommendationSummary, bool, error) {
	payload, err := c.client.Get(ctx, summaryKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summaries []domain.RecommendationSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false, fmt.Errorf("decode summary cache: %w", err)
	}

	return summaries, true, nil
}

func (c *redisAlertCache) SetSummary(ctx context.Context, summaries []domain.RecommendationSummary) error {
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encode summary cache: %w", err)
	}

	if err := c.client.Set(ctx, summaryKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAlertCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, alertsKeyPrefix, alertsScanBatch); err != nil {
		return err
	}
	return c.client.Del(ctx, summaryKey).Err()
}

func (n *noopAlertCache) GetAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.Recommendation, bool, error) {
	return nil, false, nil
}

func (n *noopAlertCache) SetAlerts(ctx context.Context, filter domain.AlertFilter, recs []domain.Recommendation) error {
	return nil
}

func (n *noopAlertCache) GetSummary(ctx context.Context) ([]domain.RecommendationSummary, bool, error) {
	return nil, false, nil
}

func (n *noopAlertCache) SetSummary(ctx context.Context, summaries []domain.RecommendationSummary) error {
	return nil
}

func (n *noopAlertCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildAlertsKey(filter domain.AlertFilter) string {
	return fmt.Sprintf("%s:%s", alertsKeyPrefix, alertFilterHash(filter))
}

func alertFilterHash(filter domain.AlertFilter) string {
	parts := []string{}

	if filter.RiskLevel != "" {
		parts = append(parts, "risk_level="+strings.ToUpper(string(filter.RiskLevel)))
	}
	if filter.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", filter.Limit))
	}
	if len(filter.StoreIDs) > 0 {
		ids := append([]string(nil), filter.StoreIDs...)
		for i := range ids {
			ids[i] = strings.TrimSpace(strings.ToUpper(ids[i]))
		}
		sort.Strings(ids)
		parts = append(parts, "store_ids="+strings.Join(ids, ","))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
