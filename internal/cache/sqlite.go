package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const slotTableDDL = `CREATE TABLE IF NOT EXISTS slots (
	name       TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
)`

// SQLite is a Slot stored as one row of a sqlite table.
type SQLite struct {
	db   *sql.DB
	name string
}

// OpenSQLite opens (creating if needed) the sqlite database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite3: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLite{db: db, name: SlotName}
	if err := s.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init(ctx context.Context) error {
	for _, q := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
		slotTableDDL,
	} {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("init sqlite cache %q: %w", q, err)
		}
	}
	return nil
}

// Get implements Slot.
func (s *SQLite) Get(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE name = ?`, s.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read sqlite slot: %w", err)
	}
	return data, nil
}

// Put implements Slot.
func (s *SQLite) Put(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slots (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		s.name, data)
	return err
}

// Delete implements Slot.
func (s *SQLite) Delete(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, s.name)
	return err
}

// Close implements Slot.
func (s *SQLite) Close() error {
	return s.db.Close()
}
