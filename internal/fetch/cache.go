package fetch

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Cache persists raw fetched HTML in SQLite keyed by (year, grade,
// kind). A solutions document covers both grades and is stored under
// grade 0.
type Cache struct {
	db *sqlx.DB
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS documents (
	year       INTEGER NOT NULL,
	grade      INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	url        TEXT NOT NULL,
	body       TEXT NOT NULL,
	fetched_at TEXT NOT NULL,
	PRIMARY KEY (year, grade, kind)
);
`

func OpenCache(dbPath string) (*Cache, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached body, with ok false on a miss.
func (c *Cache) Get(year, grade int, kind Kind) (string, bool, error) {
	var body string
	err := c.db.Get(&body, "SELECT body FROM documents WHERE year = ? AND grade = ? AND kind = ?", year, grade, string(kind))
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return body, true, nil
}

func (c *Cache) Put(year, grade int, kind Kind, url, body string) error {
	_, err := c.db.Exec(`INSERT OR REPLACE INTO documents (year, grade, kind, url, body, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		year, grade, string(kind), url, body, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}
