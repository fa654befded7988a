// Package store provides SQLite persistence for artscroll.
//
// The store keeps the history of artworks already shown so the feed does not
// repeat itself across runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/artscroll/internal/catalog"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// Shown is an artwork that was accepted into the feed.
type Shown struct {
	Item    catalog.Item
	ShownAt time.Time
}

// Stats summarizes the shown history.
type Stats struct {
	Count int
	First time.Time // zero when empty
	Last  time.Time // zero when empty
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for file-based databases.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db, now: time.Now}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shown (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT,
		object_url TEXT,
		record TEXT NOT NULL,
		shown_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shown_at ON shown(shown_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Acquires the write lock so in-flight operations finish first.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// MarkShown records item as shown. Re-marking an ID keeps the first timestamp.
func (s *Store) MarkShown(ctx context.Context, item catalog.Item) error {
	record, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO shown (id, title, artist, object_url, record, shown_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, int64(item.ID), item.DisplayTitle(), item.ArtistDisplayName, item.ObjectURL, string(record), s.now())
	if err != nil {
		return fmt.Errorf("insert shown %s: %w", item.ID, err)
	}
	return nil
}

// SeenIDs returns every ID ever shown, used to seed the seen set at startup.
func (s *Store) SeenIDs() ([]catalog.ItemID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id FROM shown")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []catalog.ItemID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, catalog.ItemID(id))
	}
	return ids, rows.Err()
}

// Recent returns the most recently shown artworks, newest first.
func (s *Store) Recent(limit int) ([]Shown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT record, shown_at FROM shown
		ORDER BY shown_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shown
	for rows.Next() {
		sh, err := scanShown(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

// Get returns the shown record for id. found is false if it was never shown.
func (s *Store) Get(id catalog.ItemID) (sh Shown, found bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT record, shown_at FROM shown WHERE id = ?", int64(id))
	sh, err = scanShown(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Shown{}, false, nil
	}
	if err != nil {
		return Shown{}, false, err
	}
	return sh, true, nil
}

// Count returns the number of shown artworks.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM shown").Scan(&n)
	return n, err
}

// Stats returns count and first/last shown times.
func (s *Store) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM shown").Scan(&st.Count); err != nil {
		return st, err
	}
	if st.Count == 0 {
		return st, nil
	}
	if err := s.db.QueryRow("SELECT shown_at FROM shown ORDER BY shown_at ASC LIMIT 1").Scan(&st.First); err != nil {
		return st, err
	}
	if err := s.db.QueryRow("SELECT shown_at FROM shown ORDER BY shown_at DESC LIMIT 1").Scan(&st.Last); err != nil {
		return st, err
	}
	return st, nil
}

// Clear deletes the shown history and returns how many rows were removed.
func (s *Store) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM shown")
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanShown(sc scanner) (Shown, error) {
	var record string
	var sh Shown
	if err := sc.Scan(&record, &sh.ShownAt); err != nil {
		return Shown{}, err
	}
	if err := json.Unmarshal([]byte(record), &sh.Item); err != nil {
		return Shown{}, fmt.Errorf("decode record: %w", err)
	}
	return sh, nil
}
