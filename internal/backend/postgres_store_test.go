package backend

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"speakpoints-bot/internal/ledger"
)

func TestNewPostgresStore(t *testing.T) {
	t.Run("initializes schema", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		defer db.Close()

		oldOpen := sqlOpen
		sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) { return db, nil }
		t.Cleanup(func() { sqlOpen = oldOpen })

		mock.ExpectPing()
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS speakpoints_ledger (")).WillReturnResult(sqlmock.NewResult(0, 0))

		store, err := NewPostgresStore(context.Background(), "postgres://x")
		if err != nil {
			t.Fatalf("new store: %v", err)
		}
		if store == nil || store.db == nil {
			t.Fatal("expected initialized store")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations: %v", err)
		}
	})

	t.Run("fails when ping fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		defer db.Close()

		oldOpen := sqlOpen
		sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) { return db, nil }
		t.Cleanup(func() { sqlOpen = oldOpen })

		mock.ExpectPing().WillReturnError(sql.ErrConnDone)

		if _, err := NewPostgresStore(context.Background(), "postgres://x"); err == nil {
			t.Fatal("expected ping error")
		}
	})

	t.Run("fails when schema exec fails", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		defer db.Close()

		oldOpen := sqlOpen
		sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) { return db, nil }
		t.Cleanup(func() { sqlOpen = oldOpen })

		mock.ExpectPing()
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS speakpoints_ledger (")).WillReturnError(sql.ErrConnDone)

		if _, err := NewPostgresStore(context.Background(), "postgres://x"); err == nil {
			t.Fatal("expected schema init error")
		}
	})
}

func TestPostgresStoreMethods(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	store := &PostgresStore{db: db}
	ctx := context.Background()
	selectSQL := regexp.QuoteMeta("SELECT doc FROM speakpoints_ledger WHERE id=$1")

	mock.ExpectQuery(selectSQL).WithArgs(1).WillReturnError(sql.ErrNoRows)
	l, err := store.Load(ctx)
	if err != nil || l.Len() != 0 {
		t.Fatalf("expected empty ledger without error, len=%d err=%v", l.Len(), err)
	}

	mock.ExpectQuery(selectSQL).WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(`{"5":{"username":"eve","points":12}}`))
	l, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r, ok := l.Get("5"); !ok || r.Points != 12 || r.Name != "eve" {
		t.Fatalf("unexpected record %+v", r)
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO speakpoints_ledger(id, doc, updated_at)")).
		WithArgs(1, `{"5":{"username":"eve","points":12}}`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := store.Save(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}

	mock.ExpectQuery(selectSQL).WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(`{"5":`))
	_, err = store.Load(ctx)
	var corrupt *ledger.CorruptDataError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptDataError, got %v", err)
	}

	mock.ExpectQuery(selectSQL).WithArgs(1).WillReturnError(sql.ErrConnDone)
	if _, err := store.Load(ctx); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("expected wrapped conn error, got %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO speakpoints_ledger(id, doc, updated_at)")).WillReturnError(sql.ErrConnDone)
	if err := store.Save(ctx, ledger.New()); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("expected wrapped conn error, got %v", err)
	}

	mock.ExpectClose()
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
