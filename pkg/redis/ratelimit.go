package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitConfig is a sliding window of Limit requests per Window,
// shared by every process using the same Key
type RateLimitConfig struct {
	Key    string
	Limit  int
	Window time.Duration
}

// Collaborator source limits
var (
	// 집계 사이트: 초당 2회 (HTML 페이지, 보수적)
	AggregatorRateLimit = RateLimitConfig{Key: "aggregator", Limit: 2, Window: time.Second}

	// BSE 공시 API: 분당 30회
	BSERateLimit = RateLimitConfig{Key: "bse", Limit: 30, Window: time.Minute}
)

// slidingWindow takes a slot or returns the milliseconds until the oldest
// entry leaves the window
var slidingWindow = redis.NewScript(`
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
	if redis.call('ZCARD', KEYS[1]) < tonumber(ARGV[3]) then
		redis.call('ZADD', KEYS[1], now, ARGV[4])
		redis.call('PEXPIRE', KEYS[1], window)
		return 0
	end
	local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
	return tonumber(oldest[2]) + window - now
`)

// RateLimiter throttles outbound requests across processes
// ⭐ SSOT: 외부 요청 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
}

// NewRateLimiter creates a limiter with keys under prefix
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{client: client, prefix: prefix}
}

// Wait blocks until cfg has a free slot or ctx is done.
// Without Redis every request passes.
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	if r.client == nil || !r.client.Enabled() {
		return nil
	}

	key := fmt.Sprintf("%s:ratelimit:%s", r.prefix, cfg.Key)
	for {
		now := time.Now()
		// member는 요청마다 유일해야 함 (같은 ms의 요청이 덮어쓰지 않도록)
		member := fmt.Sprintf("%d", now.UnixNano())

		wait, err := slidingWindow.Run(ctx, r.client.Redis(), []string{key},
			now.UnixMilli(), cfg.Window.Milliseconds(), cfg.Limit, member).Int64()
		if err != nil {
			return fmt.Errorf("rate limit %s: %w", cfg.Key, err)
		}
		if wait <= 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(wait) * time.Millisecond):
		}
	}
}
