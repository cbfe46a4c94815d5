// Package journal keeps a SQLite history of pattern reloads
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tliron/commonlog"

	_ "modernc.org/sqlite"
)

var log = commonlog.GetLogger("danmaku.journal")

// Reload is one applied reparse result
type Reload struct {
	At      time.Time
	Pattern string
	Path    string
	OK      bool
	Stale   bool
	Policy  string
	Error   string
}

// Journal records reloads, safe for concurrent use
type Journal struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open creates or opens the journal database at path, ":memory:" keeps it in memory
func Open(path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	// a single connection keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS reloads (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		at      INTEGER NOT NULL,
		pattern TEXT NOT NULL,
		path    TEXT NOT NULL,
		ok      INTEGER NOT NULL,
		stale   INTEGER NOT NULL,
		policy  TEXT NOT NULL,
		error   TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Infof("journal opened: %s", path)
	return &Journal{db: db, path: path}, nil
}

// Close closes the database connection
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends a reload
func (j *Journal) Record(ctx context.Context, r Reload) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if r.At.IsZero() {
		r.At = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO reloads (at, pattern, path, ok, stale, policy, error) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.At.UnixNano(), r.Pattern, r.Path, r.OK, r.Stale, r.Policy, r.Error,
	)
	if err != nil {
		return fmt.Errorf("recording reload: %w", err)
	}
	return nil
}

// Recent returns up to limit reloads, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]Reload, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx,
		"SELECT at, pattern, path, ok, stale, policy, error FROM reloads ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying reloads: %w", err)
	}
	defer rows.Close()

	var out []Reload
	for rows.Next() {
		var (
			r  Reload
			at int64
		)
		if err := rows.Scan(&at, &r.Pattern, &r.Path, &r.OK, &r.Stale, &r.Policy, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning reload: %w", err)
		}
		r.At = time.Unix(0, at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Failures counts failed reloads of a pattern
func (j *Journal) Failures(ctx context.Context, pattern string) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var n int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reloads WHERE pattern = ? AND ok = 0", pattern).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting failures: %w", err)
	}
	return n, nil
}
