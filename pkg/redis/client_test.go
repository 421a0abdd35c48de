package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{
			name: "Invalid scheme",
			url:  "invalid://url",
		},
		{
			name: "Empty URL",
			url:  "",
		},
		{
			name: "Unreachable server",
			url:  "redis://127.0.0.1:1/0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, "test", nil)
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	assert.NoError(t, client.Health(ctx))

	mr.SetError("ERR server unavailable")
	assert.Error(t, client.Health(ctx))
}

func TestClient_SlidingWindow(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	window := 15 * time.Minute
	key := client.KeyBuilder.KeyRateLimit("contact:198.51.100.1")

	tests := []struct {
		name    string
		offset  time.Duration
		member  string
		allowed bool
		count   int64
	}{
		{name: "first hit", offset: 0, member: "m1", allowed: true, count: 1},
		{name: "second hit", offset: time.Minute, member: "m2", allowed: true, count: 2},
		{name: "third hit", offset: 2 * time.Minute, member: "m3", allowed: true, count: 3},
		{name: "over the limit", offset: 3 * time.Minute, member: "m4", allowed: false, count: 3},
		{name: "oldest hit slid out", offset: window, member: "m5", allowed: true, count: 3},
		{name: "still full", offset: window + 30*time.Second, member: "m6", allowed: false, count: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := client.SlidingWindow(ctx, key, tt.member, start.Add(tt.offset), 3, window)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, res.Allowed)
			assert.Equal(t, tt.count, res.Count)
		})
	}
}

func TestClient_SlidingWindow_ResetAt(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	res, err := client.SlidingWindow(ctx, "k", "a", now, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.ResetAt.Equal(now.Add(time.Minute)))

	res, err = client.SlidingWindow(ctx, "k", "b", now.Add(10*time.Second), 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.True(t, res.ResetAt.Equal(now.Add(time.Minute)))
}

func TestClient_FixedWindow(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()
	now := time.Now()
	key := client.KeyBuilder.KeyRateLimit("login:198.51.100.2")

	for i := 1; i <= 5; i++ {
		res, err := client.FixedWindow(ctx, key, now, 5, 15*time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "hit %d", i)
		assert.Equal(t, int64(i), res.Count)
	}

	res, err := client.FixedWindow(ctx, key, now, 5, 15*time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(6), res.Count)
	assert.Greater(t, mr.TTL(key), time.Duration(0))

	mr.FastForward(15 * time.Minute)

	res, err = client.FixedWindow(ctx, key, now.Add(15*time.Minute), 5, 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.Count)
}

func TestClient_FixedWindow_RepairsMissingExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("stuck", "3")
	_, err := client.FixedWindow(ctx, "stuck", time.Now(), 5, time.Minute)
	require.NoError(t, err)
	assert.Greater(t, mr.TTL("stuck"), time.Duration(0))
}

func TestPrefixForLog(t *testing.T) {
	assert.Equal(t, "short", prefixForLog("short"))
	assert.Equal(t, "prod:vx:ratelimit:contac…", prefixForLog("prod:vx:ratelimit:contact:10.0.0.1"))
}
