package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/kquant/pkg/config"
)

// Client wraps the Redis connection behind the cache and rate-limit helpers.
// 비활성 모드에서는 모든 연산이 no-op으로 동작해서 Redis 없는 로컬 환경에서도
// API 서버를 띄울 수 있다.
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New creates a Redis client, or a disabled stand-in when REDIS_ENABLED is
// off.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{enabled: false}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{rdb: rdb, enabled: true}, nil
}

// Close closes the connection. Disabled clients have nothing to close.
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled reports whether a live connection exists.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis returns the underlying client for the Lua rate-limit script.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
