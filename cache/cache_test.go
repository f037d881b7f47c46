package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewFromClient(client, time.Minute)
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, ok := c.GetResolution(ctx, "us-gaap", "Revenues", "", false)
	assert.False(t, ok)

	c.SetResolution(ctx, "us-gaap", "Revenues", "", false, ResolvedLabel{NormalizedLabel: "revenue", Source: "curated_map"})

	got, ok := c.GetResolution(ctx, "us-gaap", "Revenues", "", false)
	assert.True(t, ok)
	assert.Equal(t, "revenue", got.NormalizedLabel)
}

func TestCacheDistinguishesContextAndSibling(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.SetResolution(ctx, "us-gaap", "DefinedBenefitPlanAssumptionsUsedDiscountRate", "obligation", false, ResolvedLabel{NormalizedLabel: "pension_discount_rate_obligation", Source: "context_override"})

	_, ok := c.GetResolution(ctx, "us-gaap", "DefinedBenefitPlanAssumptionsUsedDiscountRate", "cost", false)
	assert.False(t, ok)

	got, ok := c.GetResolution(ctx, "us-gaap", "DefinedBenefitPlanAssumptionsUsedDiscountRate", "obligation", false)
	assert.True(t, ok)
	assert.Equal(t, "pension_discount_rate_obligation", got.NormalizedLabel)
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	_, ok := c.GetResolution(ctx, "us-gaap", "Revenues", "", false)
	assert.False(t, ok)
	c.SetResolution(ctx, "us-gaap", "Revenues", "", false, ResolvedLabel{})
	assert.NoError(t, c.Close())
}
