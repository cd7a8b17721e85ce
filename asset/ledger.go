package asset

import (
	"database/sql"
	"time"

	// SQLite driver for the cache ledger
	_ "github.com/mattn/go-sqlite3"

	"github.com/Caboosey/mapillary-js/errors"
	"github.com/Caboosey/mapillary-js/graph"
)

// Ledger persists per-node cache bookkeeping in SQLite so a restarted
// viewer can rank nodes by past usage when deciding what to warm first.
type Ledger struct {
	db *sql.DB
}

// NewLedger wraps an open database handle
func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// OpenLedger opens (or creates) the ledger database at path
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open cache ledger %s", path)
	}
	l := &Ledger{db: db}
	if err := l.Init(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Init creates the ledger schema if it does not exist
func (l *Ledger) Init() error {
	schema := `
		CREATE TABLE IF NOT EXISTS cache_ledger (
			node_key     TEXT PRIMARY KEY,
			cached_at    TIMESTAMP,
			last_used    TIMESTAMP,
			evicted_at   TIMESTAMP,
			loaded_bytes INTEGER NOT NULL DEFAULT 0,
			total_bytes  INTEGER NOT NULL DEFAULT 0
		)
	`
	if _, err := l.db.Exec(schema); err != nil {
		return errors.Wrap(err, "create cache ledger schema")
	}
	return nil
}

// RecordCached upserts a node's cache completion with its byte totals
func (l *Ledger) RecordCached(key string, status graph.LoadStatus) error {
	query := `
		INSERT INTO cache_ledger (node_key, cached_at, loaded_bytes, total_bytes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(node_key) DO UPDATE SET
			cached_at = excluded.cached_at,
			loaded_bytes = excluded.loaded_bytes,
			total_bytes = excluded.total_bytes,
			evicted_at = NULL
	`
	_, err := l.db.Exec(query, key, time.Now(), status.Loaded, status.Total)
	if err != nil {
		return errors.Wrapf(err, "record cached for node %s", key)
	}
	return nil
}

// RecordUsed stamps a node as the active node
func (l *Ledger) RecordUsed(key string) error {
	query := `
		INSERT INTO cache_ledger (node_key, last_used)
		VALUES (?, ?)
		ON CONFLICT(node_key) DO UPDATE SET last_used = excluded.last_used
	`
	_, err := l.db.Exec(query, key, time.Now())
	if err != nil {
		return errors.Wrapf(err, "record use for node %s", key)
	}
	return nil
}

// RecordEvicted stamps a node's eviction time
func (l *Ledger) RecordEvicted(key string) error {
	query := `UPDATE cache_ledger SET evicted_at = ? WHERE node_key = ?`
	result, err := l.db.Exec(query, time.Now(), key)
	if err != nil {
		return errors.Wrapf(err, "record eviction for node %s", key)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError("node %q not in cache ledger", key)
	}
	return nil
}

// WarmKeys returns up to limit node keys ordered by most recent use,
// for warming the cache after a restart.
func (l *Ledger) WarmKeys(limit int) ([]string, error) {
	query := `
		SELECT node_key FROM cache_ledger
		WHERE last_used IS NOT NULL
		ORDER BY last_used DESC
		LIMIT ?
	`
	rows, err := l.db.Query(query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query warm keys")
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errors.Wrap(err, "scan warm key")
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close closes the underlying database handle
func (l *Ledger) Close() error {
	return l.db.Close()
}
