package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when a key does not exist.
var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// SetReport caches a computed report under a "report:" key.
func (c *Client) SetReport(key string, value interface{}, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return c.rdb.Set(ctx, "report:"+key, jsonData, ttl).Err()
}

// GetReport loads a cached report into dest.
func (c *Client) GetReport(key string, dest interface{}) error {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "report:"+key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get report: %w", err)
	}
	return json.Unmarshal([]byte(val), dest)
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
