package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Client struct {
	rdb        *redis.Client
	KeyBuilder *KeyBuilder
	log        *zap.Logger
}

// WindowResult is the outcome of one rate-limit window operation
type WindowResult struct {
	Allowed bool
	Count   int64
	ResetAt time.Time
}

// slidingWindowScript trims timestamps older than the window, then records the
// current one only if the window still has room. Scores are unix millis.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)
local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// NewClient creates a new Redis client
func NewClient(redisURL string, environment string, log *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 20
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Client{rdb: rdb, KeyBuilder: NewKeyBuilder(environment), log: log}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Health checks the Redis connection
func (c *Client) Health(ctx context.Context) error {
	start := time.Now()
	err := c.rdb.Ping(ctx).Err()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_ping",
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_ping", zap.Duration("duration", dur))
	}
	return err
}

// SlidingWindow records a hit at now under key unless limit hits already fall
// inside the trailing window. member must be unique per call.
func (c *Client) SlidingWindow(ctx context.Context, key, member string, now time.Time, limit int, window time.Duration) (WindowResult, error) {
	start := time.Now()
	vals, err := slidingWindowScript.Run(ctx, c.rdb, []string{key},
		now.UnixMilli(), window.Milliseconds(), limit, member).Int64Slice()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_sliding_window",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
		return WindowResult{}, err
	}
	if len(vals) != 3 {
		return WindowResult{}, fmt.Errorf("unexpected sliding window reply: %v", vals)
	}

	res := WindowResult{
		Allowed: vals[0] == 1,
		Count:   vals[1],
		ResetAt: time.UnixMilli(vals[2]),
	}
	c.log.Debug("redis_sliding_window",
		zap.String("key_prefix", prefixForLog(key)),
		zap.Bool("allowed", res.Allowed),
		zap.Int64("count", res.Count),
		zap.Duration("duration", dur))
	return res, nil
}

// FixedWindow increments the counter at key, starting its expiry on the first
// hit of a window. The hit is counted even when it exceeds limit.
func (c *Client) FixedWindow(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (WindowResult, error) {
	start := time.Now()

	count, err := c.rdb.Incr(ctx, key).Result()
	if err == nil && count == 1 {
		err = c.rdb.PExpire(ctx, key, window).Err()
	}

	var ttl time.Duration
	if err == nil {
		ttl, err = c.rdb.PTTL(ctx, key).Result()
	}
	// A key without expiry would block forever; repair it.
	if err == nil && ttl < 0 {
		ttl = window
		err = c.rdb.PExpire(ctx, key, window).Err()
	}

	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_fixed_window",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
		return WindowResult{}, err
	}

	res := WindowResult{
		Allowed: count <= int64(limit),
		Count:   count,
		ResetAt: now.Add(ttl),
	}
	c.log.Debug("redis_fixed_window",
		zap.String("key_prefix", prefixForLog(key)),
		zap.Bool("allowed", res.Allowed),
		zap.Int64("count", count),
		zap.Duration("duration", dur))
	return res, nil
}

// prefixForLog returns a safe prefix of a key to avoid logging PII
func prefixForLog(key string) string {
	if len(key) <= 24 {
		return key
	}
	return key[:24] + "…"
}
