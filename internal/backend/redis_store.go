package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"speakpoints-bot/internal/ledger"
)

const DefaultRedisKey = "speakpoints:ledger"

// RedisStore keeps the whole ledger document under a single key.
type RedisStore struct {
	client RedisClient
	key    string
}

func NewRedisStore(client RedisClient, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (*ledger.Ledger, error) {
	doc, err := s.client.Get(ctx, s.key)
	if errors.Is(err, redis.Nil) {
		return ledger.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return ledger.Decode("redis:"+s.key, []byte(doc))
}

func (s *RedisStore) Save(ctx context.Context, l *ledger.Ledger) error {
	data, err := ledger.Encode(l)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
