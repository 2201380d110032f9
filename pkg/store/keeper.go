package store

import (
	"context"
	"sync"

	"speakpoints-bot/internal/ledger"
)

// Keeper serializes ledger read-modify-write cycles over a Store.
type Keeper struct {
	mu    sync.Mutex
	store Store
}

func NewKeeper(st Store) *Keeper {
	return &Keeper{store: st}
}

// Update loads the ledger, applies fn and saves the result. Nothing is
// saved if fn returns an error.
func (k *Keeper) Update(ctx context.Context, fn func(l *ledger.Ledger) error) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, err := k.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}
	return k.store.Save(ctx, l)
}

// View loads the ledger and hands it to fn without saving.
func (k *Keeper) View(ctx context.Context, fn func(l *ledger.Ledger) error) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, err := k.store.Load(ctx)
	if err != nil {
		return err
	}
	return fn(l)
}
