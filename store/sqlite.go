package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteBackend persists contract state in a single kv table.
type SQLiteBackend struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLite opens (and creates when missing) the database at path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer, and ":memory:" must not fan out into separate databases
	db.SetMaxOpenConns(1)

	s := &SQLiteBackend{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteBackend) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS kv (
		k BLOB PRIMARY KEY,
		v BLOB NOT NULL
	) WITHOUT ROWID;
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Load(ctx context.Context, key string) (*string, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, []byte(key)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	val := string(v)
	return &val, nil
}

func (s *SQLiteBackend) Apply(ctx context.Context, writes []Write) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, w := range writes {
		if w.Value == nil {
			if _, err = tx.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, []byte(w.Key)); err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
			[]byte(w.Key), []byte(*w.Value))
		if err != nil {
			return fmt.Errorf("upsert: %w", err)
		}
	}
	return tx.Commit()
}

// Path returns the database location.
func (s *SQLiteBackend) Path() string {
	return s.dbPath
}

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
