package cache

import (
	"context"
	"testing"
	"time"

	"bouw-backoffice/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWorkCodeCache_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	c := NewMemoryWorkCodeCache(time.Minute).(*memoryWorkCodeCache)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, []model.WorkCode{{Code: "100"}}))
	codes, ok, _ := c.Get(ctx)
	assert.True(t, ok)
	assert.Len(t, codes, 1)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx)
	assert.False(t, ok)
}

func TestMemoryWorkCodeCache_Invalidate(t *testing.T) {
	c := NewMemoryWorkCodeCache(time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, []model.WorkCode{}))
	_, ok, _ := c.Get(ctx)
	assert.True(t, ok, "an empty catalog is still a hit")

	require.NoError(t, c.Invalidate(ctx))
	_, ok, _ = c.Get(ctx)
	assert.False(t, ok)
}

func TestMemoryWorkCodeCache_ReturnsCopy(t *testing.T) {
	c := NewMemoryWorkCodeCache(time.Hour)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, []model.WorkCode{{Code: "100"}}))

	codes, _, _ := c.Get(ctx)
	codes[0].Code = "changed"

	again, _, _ := c.Get(ctx)
	assert.Equal(t, "100", again[0].Code)
}
