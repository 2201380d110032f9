package backend

import (
	"context"
	"fmt"
	"io"

	"speakpoints-bot/pkg/store"
)

// Options selects and configures a ledger backend.
type Options struct {
	Kind        string
	Path        string
	RedisURL    string
	RedisKey    string
	DatabaseURL string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newRedisClient connects and pings, so an unreachable server fails at
// startup rather than on the first ledger write.
var newRedisClient = func(ctx context.Context, url string) (RedisClient, io.Closer, error) {
	c, err := NewRealRedisClient(url)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return c, c, nil
}

var newPostgresStore = func(ctx context.Context, dsn string) (store.Store, io.Closer, error) {
	s, err := NewPostgresStore(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return s, s, nil
}

// Open builds the store named by opts.Kind. The returned closer releases
// any connection the store holds.
func Open(ctx context.Context, opts Options) (store.Store, io.Closer, error) {
	switch opts.Kind {
	case "", "file":
		return store.NewFileStore(opts.Path), nopCloser{}, nil
	case "memory":
		return store.NewMemoryStore(), nopCloser{}, nil
	case "redis":
		client, closer, err := newRedisClient(ctx, opts.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis init: %w", err)
		}
		return NewRedisStore(client, opts.RedisKey), closer, nil
	case "postgres":
		if opts.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("postgres backend requires DATABASE_URL")
		}
		st, closer, err := newPostgresStore(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres init: %w", err)
		}
		return st, closer, nil
	}
	return nil, nil, fmt.Errorf("unknown ledger backend %q", opts.Kind)
}
