package store

import (
	"context"

	"speakpoints-bot/internal/ledger"
)

// Store defines the interface for ledger persistence. The whole ledger is
// the unit of persistence: Load returns a fresh copy and Save replaces the
// stored document entirely.
type Store interface {
	Load(ctx context.Context) (*ledger.Ledger, error)
	Save(ctx context.Context, l *ledger.Ledger) error
}
