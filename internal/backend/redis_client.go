package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient defines the subset of Redis the ledger store needs.
// This allows swapping between real Redis and in-memory implementations
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type RealRedisClient struct {
	client *redis.Client
}

func NewRealRedisClient(url string) (*RealRedisClient, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RealRedisClient{client: redis.NewClient(opt)}, nil
}

func (c *RealRedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RealRedisClient) Close() error {
	return c.client.Close()
}

func (c *RealRedisClient) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *RealRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// InMemoryRedisClient provides an in-memory implementation of RedisClient for testing
type InMemoryRedisClient struct {
	mu     sync.Mutex
	values map[string]string
}

func NewInMemoryRedisClient() *InMemoryRedisClient {
	return &InMemoryRedisClient{values: make(map[string]string)}
}

func (c *InMemoryRedisClient) Get(ctx context.Context, key string) (string, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()

	if val, ok := c.values[key]; ok {
		return val, nil
	}
	return "", redis.Nil
}

func (c *InMemoryRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	_ = ctx
	_ = expiration
	c.mu.Lock()
	defer c.mu.Unlock()

	switch val := value.(type) {
	case []byte:
		c.values[key] = string(val)
	case string:
		c.values[key] = val
	default:
		c.values[key] = fmt.Sprintf("%v", value)
	}
	return nil
}
