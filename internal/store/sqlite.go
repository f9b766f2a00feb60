package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// openDB opens a SQLite database. An empty path opens a private
// in-memory database.
func openDB(path string) (*sql.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes; one connection also keeps
	// an in-memory database alive for the life of the handle.
	db.SetMaxOpenConns(1)

	return db, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS _meta (
  key TEXT PRIMARY KEY,
  value TEXT
);

CREATE TABLE IF NOT EXISTS labels (
  dataset TEXT NOT NULL,
  row INTEGER NOT NULL,
  field TEXT NOT NULL,
  value TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_labels_field ON labels(dataset, field, value);

CREATE TABLE IF NOT EXISTS nums (
  dataset TEXT NOT NULL,
  row INTEGER NOT NULL,
  field TEXT NOT NULL,
  value REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nums_row ON nums(dataset, row, field);
`

func hashKey(dataset string) string { return "hash:" + dataset }
func syncKey(dataset string) string { return "last_sync:" + dataset }

// getMeta reads a _meta value; a missing key reads as "".
func getMeta(db *sql.DB, key string) (string, error) {
	var v sql.NullString
	err := db.QueryRow("SELECT value FROM _meta WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v.String, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setMeta(db execer, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// GetStoredHash returns the fingerprint the dataset was last indexed with.
func (ix *Index) GetStoredHash(dataset string) (string, error) {
	return getMeta(ix.db, hashKey(dataset))
}

// GetLastSyncTime returns when the dataset was last indexed.
func (ix *Index) GetLastSyncTime(dataset string) (time.Time, error) {
	v, err := getMeta(ix.db, syncKey(dataset))
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}
