package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/finsearch/internal/core/port"
	_ "modernc.org/sqlite"
)

var _ port.ConfigCache = (*SQLiteCache)(nil)

// SQLiteCache is a config cache shared by every process that opens the same
// database file.
type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(ctx context.Context, path string) (*SQLiteCache, error) {
	const op = "NewSQLiteCache"

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const op = "SQLiteCache.Get"

	var v []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ?`, key,
	).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return v, true, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, v []byte) error {
	const op = "SQLiteCache.Set"

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key)
		 DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, v, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *SQLiteCache) Close() {
	const op = "SQLiteCache.Close"
	log := slog.With("op", op)

	if err := c.db.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("cache is closed")
}
