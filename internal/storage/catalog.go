package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var ErrCatalogClosed = errors.New("storage: catalog closed")

// Catalog indexes runs in SQLite so listings do not need to walk every
// run directory.
type Catalog struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

type CatalogEntry struct {
	ID        string
	Type      string
	Mode      string
	Steps     int
	Exhausted bool
	Final     string
	Timestamp time.Time
}

func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			mode TEXT NOT NULL,
			steps INTEGER NOT NULL,
			exhausted INTEGER NOT NULL,
			final TEXT NOT NULL,
			timestamp TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_runs_type
		ON runs(type)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &Catalog{db: db}, nil
}

func finalText(meta RunMetadata) string {
	s := ""
	for i, v := range meta.Final {
		if i > 0 {
			s += " "
		}
		s += formatValue(float64(v))
	}
	return s
}

func (c *Catalog) Record(meta RunMetadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCatalogClosed
	}

	exhausted := 0
	if meta.Exhausted {
		exhausted = 1
	}

	_, err := c.db.Exec(`
		INSERT INTO runs (id, type, mode, steps, exhausted, final, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			mode = excluded.mode,
			steps = excluded.steps,
			exhausted = excluded.exhausted,
			final = excluded.final,
			timestamp = excluded.timestamp
	`, meta.ID, meta.Type, meta.Mode, meta.Steps, exhausted, finalText(meta),
		meta.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func (c *Catalog) Get(runID string) (*CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrCatalogClosed
	}

	row := c.db.QueryRow(`
		SELECT id, type, mode, steps, exhausted, final, timestamp
		FROM runs WHERE id = ?
	`, runID)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return e, nil
}

// List returns runs newest first. An empty typ lists every type.
func (c *Catalog) List(typ string) ([]CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrCatalogClosed
	}

	rows, err := c.db.Query(`
		SELECT id, type, mode, steps, exhausted, final, timestamp
		FROM runs
		WHERE ? = '' OR type = ?
		ORDER BY timestamp DESC, id
	`, typ, typ)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (c *Catalog) Delete(runID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCatalogClosed
	}

	if _, err := c.db.Exec(`DELETE FROM runs WHERE id = ?`, runID); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

// Sync records every run found on disk, for catalogs created after the runs.
func (c *Catalog) Sync(s *Store) (int, error) {
	runs, err := s.List()
	if err != nil {
		return 0, err
	}
	for _, meta := range runs {
		if err := c.Record(meta); err != nil {
			return 0, err
		}
	}
	return len(runs), nil
}

func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*CatalogEntry, error) {
	var (
		e         CatalogEntry
		exhausted int
		timestamp string
	)
	if err := row.Scan(&e.ID, &e.Type, &e.Mode, &e.Steps, &exhausted, &e.Final, &timestamp); err != nil {
		return nil, err
	}
	e.Exhausted = exhausted != 0

	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp: %w", err)
	}
	e.Timestamp = ts
	return &e, nil
}
