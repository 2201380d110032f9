package backend

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"speakpoints-bot/internal/ledger"
	"speakpoints-bot/pkg/store"
)

type failingRedisClient struct {
	err error
}

func (c failingRedisClient) Get(ctx context.Context, key string) (string, error) { return "", c.err }
func (c failingRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.err
}

var _ store.Store = (*RedisStore)(nil)

func TestRedisStore_RoundTrip(t *testing.T) {
	client := NewInMemoryRedisClient()
	s := NewRedisStore(client, "")
	ctx := context.Background()

	empty, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if empty.Len() != 0 {
		t.Fatalf("expected empty ledger")
	}

	l := ledger.New()
	l.GetOrCreate("1", "ann").Points = 3
	l.GetOrCreate("2", "ben").Points = 8
	if err := s.Save(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := client.Get(ctx, DefaultRedisKey)
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	if !strings.HasPrefix(raw, `{"1":{"username":"ann"`) {
		t.Fatalf("unexpected stored document %s", raw)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(l.Records(), got.Records()) {
		t.Fatalf("round trip mismatch")
	}
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	client := NewInMemoryRedisClient()
	_ = client.Set(context.Background(), "custom", "{oops", 0)
	s := NewRedisStore(client, "custom")

	_, err := s.Load(context.Background())
	var corrupt *ledger.CorruptDataError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptDataError, got %v", err)
	}
	if corrupt.Source != "redis:custom" {
		t.Fatalf("unexpected source %q", corrupt.Source)
	}
}

func TestRedisStore_ClientErrors(t *testing.T) {
	s := NewRedisStore(failingRedisClient{err: errors.New("conn refused")}, "k")
	ctx := context.Background()

	if _, err := s.Load(ctx); err == nil || !strings.Contains(err.Error(), "redis get k") {
		t.Fatalf("expected wrapped get error, got %v", err)
	}
	if err := s.Save(ctx, ledger.New()); err == nil || !strings.Contains(err.Error(), "redis set k") {
		t.Fatalf("expected wrapped set error, got %v", err)
	}
}

func TestRedisStore_WithKeeper(t *testing.T) {
	k := store.NewKeeper(NewRedisStore(NewInMemoryRedisClient(), ""))
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := k.Update(ctx, func(l *ledger.Ledger) error {
			l.GetOrCreate("7", "gus")
			_, err := l.AddPoints("7", 2)
			return err
		}); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	_ = k.View(ctx, func(l *ledger.Ledger) error {
		r, _ := l.Get("7")
		if r == nil || r.Points != 6 {
			t.Fatalf("expected 6 points, got %+v", r)
		}
		return nil
	})
}
