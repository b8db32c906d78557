package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/actionboard/pkg/domain/interfaces"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

type SQLite struct {
	db *sql.DB
}

var _ interfaces.Repository = &SQLite{}

// Open opens (and creates if needed) the database at path and applies the schema.
// Every transaction starts with BEGIN IMMEDIATE so that writers serialize on
// the database lock instead of failing at commit time.
func Open(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, goerr.New("sqlite path is required")
	}

	inMemory := path == MemoryPath
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
		}
	}

	params := url.Values{}
	params.Set("_txlock", "immediate")
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "foreign_keys(1)")
	dsn := "file:" + path + "?" + params.Encode()

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}

	if inMemory {
		// Each connection of :memory: is a distinct database.
		db.SetMaxOpenConns(1)
	} else {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to enable WAL", goerr.V("path", path))
		}
	}

	if _, err := db.ExecContext(ctx, SchemaSQL); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to apply schema", goerr.V("path", path))
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) RunTransaction(ctx context.Context, fn interfaces.TxFunc) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(goerr.Wrap(err, "failed to begin transaction"))
	}

	if err := fn(ctx, &transaction{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return goerr.Wrap(errors.Join(err, rbErr), "failed to rollback transaction")
		}
		return classify(err)
	}

	if err := sqlTx.Commit(); err != nil {
		return classify(goerr.Wrap(err, "failed to commit transaction"))
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// classify marks lock contention as ErrConflict and leaves other errors as is
func classify(err error) error {
	if err == nil || errors.Is(err, interfaces.ErrConflict) || !isBusy(err) {
		return err
	}
	return goerr.Wrap(errors.Join(interfaces.ErrConflict, err), "database is busy")
}

func isBusy(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}
	return strings.Contains(err.Error(), "database is locked")
}

type transaction struct {
	tx *sql.Tx
}

func (t *transaction) Action() interfaces.ActionRepository {
	return &actionRepository{tx: t.tx}
}

func (t *transaction) Order() interfaces.OrderRepository {
	return &orderRepository{tx: t.tx}
}

func (t *transaction) Checklist() interfaces.ChecklistRepository {
	return &checklistRepository{tx: t.tx}
}

func (t *transaction) Movement() interfaces.MovementRepository {
	return &movementRepository{tx: t.tx}
}
