package service

import (
	"context"
	"testing"
	"time"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenDenylist(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	d := NewMemoryTokenDenylist()
	d.now = func() time.Time { return now }

	require.NoError(t, d.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, d.Revoke(ctx, "stale", now.Add(-time.Minute)))

	revoked, err := d.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = d.IsRevoked(ctx, "stale")
	assert.False(t, revoked)
	revoked, _ = d.IsRevoked(ctx, "unknown")
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = d.IsRevoked(ctx, "a")
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "b", now.Add(time.Hour)))
	assert.Len(t, d.revoked, 1, "expired entries are pruned on revoke")
}

func TestRedisTokenDenylist(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	ctx := context.Background()
	d := NewRedisTokenDenylist(client)

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	require.NoError(t, d.Revoke(ctx, "jti-past", time.Now().Add(-time.Minute)))

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = d.IsRevoked(ctx, "jti-past")
	require.NoError(t, err)
	assert.False(t, revoked)

	ttl, err := client.TTL(ctx, "foodgram:revoked:jti-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}
