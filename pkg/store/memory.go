package store

import (
	"context"
	"sync"

	"speakpoints-bot/internal/ledger"
)

// MemoryStore keeps the encoded ledger document in process memory.
type MemoryStore struct {
	mu  sync.RWMutex
	doc []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreFromDocument seeds the store with raw document bytes.
func NewMemoryStoreFromDocument(doc []byte) *MemoryStore {
	return &MemoryStore{doc: append([]byte(nil), doc...)}
}

func (s *MemoryStore) Load(ctx context.Context) (*ledger.Ledger, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledger.Decode("memory", s.doc)
}

func (s *MemoryStore) Save(ctx context.Context, l *ledger.Ledger) error {
	_ = ctx
	data, err := ledger.Encode(l)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = data
	return nil
}

// Document returns a copy of the stored bytes.
func (s *MemoryStore) Document() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.doc...)
}
