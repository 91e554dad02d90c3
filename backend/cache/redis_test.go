package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"learnhub/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache connects to REDIS_ADDR; the tests are skipped without one.
func newTestCache(t *testing.T) *LeaderboardCache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client, err := NewClient(context.Background(), addr, os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := NewLeaderboardCache(client)
	require.NoError(t, c.Invalidate(context.Background()))
	return c
}

func TestGenerationAdvancesOnInvalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	before, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))
	after, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestLeaderboardCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	key := fmt.Sprintf("%d:30:10", gen)
	other := fmt.Sprintf("%d:7:5", gen)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	users := []models.HelpfulUser{{ID: 3, Username: "ana", Contributions: 4}}
	require.NoError(t, c.Set(ctx, key, users, time.Minute))
	require.NoError(t, c.Set(ctx, other, []models.HelpfulUser{}, time.Minute))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, users, got)

	got, ok, err = c.Get(ctx, other)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	// Readers move to the next generation's keys after an invalidation.
	require.NoError(t, c.Invalidate(ctx))
	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	_, ok, err = c.Get(ctx, fmt.Sprintf("%d:30:10", gen))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewClientUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewClient(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
}
