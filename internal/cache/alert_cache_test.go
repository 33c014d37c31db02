package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/andresuchdata/demandiq/backend-go/internal/config"
	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertFilterHashIgnoresStoreOrder(t *testing.T) {
	a := alertFilterHash(domain.AlertFilter{RiskLevel: domain.RiskHigh, StoreIDs: []string{"S002", "S001"}, Limit: 50})
	b := alertFilterHash(domain.AlertFilter{RiskLevel: domain.RiskHigh, StoreIDs: []string{"S001", "S002"}, Limit: 50})
	assert.Equal(t, a, b)
}

func TestAlertFilterHashNormalizesCaseAndSpace(t *testing.T) {
	a := alertFilterHash(domain.AlertFilter{StoreIDs: []string{" s001 ", "S002"}})
	b := alertFilterHash(domain.AlertFilter{StoreIDs: []string{"S001", "s002"}})
	assert.Equal(t, a, b)
}

func TestAlertFilterHashDistinguishesFilters(t *testing.T) {
	base := domain.AlertFilter{RiskLevel: domain.RiskHigh, Limit: 50}
	variants := []domain.AlertFilter{
		{RiskLevel: domain.RiskMed, Limit: 50},
		{RiskLevel: domain.RiskHigh, Limit: 100},
		{RiskLevel: domain.RiskHigh, Limit: 50, StoreIDs: []string{"S001"}},
	}
	for _, v := range variants {
		assert.NotEqual(t, alertFilterHash(base), alertFilterHash(v))
	}
}

func TestAlertFilterHashEmptyIsDefault(t *testing.T) {
	assert.Equal(t, "default", alertFilterHash(domain.AlertFilter{}))
}

func TestBuildAlertsKeyUsesPrefix(t *testing.T) {
	key := buildAlertsKey(domain.AlertFilter{RiskLevel: domain.RiskHigh})
	assert.True(t, strings.HasPrefix(key, alertsKeyPrefix+":"))
}

func TestNewAlertCacheDisabledIsNoop(t *testing.T) {
	c, err := NewAlertCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	recs, ok, err := c.GetAlerts(ctx, domain.AlertFilter{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, recs)

	require.NoError(t, c.SetAlerts(ctx, domain.AlertFilter{}, []domain.Recommendation{{StoreID: "S001"}}))

	// Writes through a noop cache never become visible.
	_, ok, err = c.GetAlerts(ctx, domain.AlertFilter{})
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.InvalidateAll(ctx))
}
