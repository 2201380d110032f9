package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"speakpoints-bot/internal/ledger"
)

var sqlOpen = sql.Open

// ledgerRowID is the only row of speakpoints_ledger.
const ledgerRowID = 1

// PostgresStore keeps the ledger document in a single-row table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlOpen("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	store := &PostgresStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS speakpoints_ledger (
  id SMALLINT PRIMARY KEY,
  doc TEXT NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Load(ctx context.Context) (*ledger.Ledger, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM speakpoints_ledger WHERE id=$1`, ledgerRowID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("select ledger: %w", err)
	}
	return ledger.Decode("postgres:speakpoints_ledger", []byte(doc))
}

func (s *PostgresStore) Save(ctx context.Context, l *ledger.Ledger) error {
	data, err := ledger.Encode(l)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO speakpoints_ledger(id, doc, updated_at)
VALUES($1,$2,NOW())
ON CONFLICT (id) DO UPDATE SET doc=EXCLUDED.doc, updated_at=NOW()
`, ledgerRowID, string(data))
	if err != nil {
		return fmt.Errorf("upsert ledger: %w", err)
	}
	return nil
}
