// Package tally keeps a history of primitive counts in SQLite.
package tally

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	_ "modernc.org/sqlite"
)

// ErrUnknownRun indicates the requested run doesn't exist.
var ErrUnknownRun = errors.New("unknown run")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS counts (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	op     TEXT NOT NULL,
	count  INTEGER NOT NULL,
	PRIMARY KEY (run_id, op)
);`

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one stored set of counts.
type Run struct {
	ID        uuid.UUID
	Label     string
	CreatedAt time.Time
	Total     int
}

// Store is a SQLite-backed run history.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	log commonlog.Logger
}

// Open opens (creating if needed) the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Pragmas below are per connection.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		schema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing %s: %w", path, err)
		}
	}

	return &Store{db: db, log: commonlog.GetLogger("qtrace.tally")}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun stores a set of counts under a label and returns the new run id.
func (s *Store) SaveRun(ctx context.Context, label string, counts map[string]int) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	created := time.Now().UTC().Format(timeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, label, created_at) VALUES (?, ?, ?)`,
		id.String(), label, created); err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}

	for _, op := range slices.Sorted(maps.Keys(counts)) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO counts (run_id, op, count) VALUES (?, ?, ?)`,
			id.String(), op, counts[op]); err != nil {
			return uuid.Nil, fmt.Errorf("insert count %s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	s.log.Debug("saved run", "id", id.String(), "label", label, "ops", len(counts))
	return id, nil
}

// Runs lists stored runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT r.id, r.label, r.created_at, COALESCE(SUM(c.count), 0)
		FROM runs r LEFT JOIN counts c ON c.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at, r.rowid`)
}

// Latest returns the most recent run stored under label.
func (s *Store) Latest(ctx context.Context, label string) (Run, error) {
	runs, err := s.queryRuns(ctx, `
		SELECT r.id, r.label, r.created_at, COALESCE(SUM(c.count), 0)
		FROM runs r LEFT JOIN counts c ON c.run_id = r.id
		WHERE r.label = ?
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.rowid DESC
		LIMIT 1`, label)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("%w: no run labelled %q", ErrUnknownRun, label)
	}
	return runs[0], nil
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run           Run
			id, createdAt string
		)
		if err := rows.Scan(&id, &run.Label, &createdAt, &run.Total); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		if run.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("run %s created_at: %w", id, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Counts returns the counts stored for a run.
func (s *Store) Counts(ctx context.Context, id uuid.UUID) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, id.String()).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRun, id)
	} else if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT op, count FROM counts WHERE run_id = ?`, id.String())
	if err != nil {
		return nil, fmt.Errorf("querying counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			op string
			n  int
		)
		if err := rows.Scan(&op, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[op] = n
	}
	return counts, rows.Err()
}

// Change is the difference in one bucket between two runs.
type Change struct {
	Key    string
	Before int
	After  int
}

// Delta returns After - Before.
func (c Change) Delta() int {
	return c.After - c.Before
}

// Diff compares two count maps and returns the buckets that differ,
// sorted by key. Missing buckets count as zero.
func Diff(before, after map[string]int) []Change {
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	var changes []Change
	for _, k := range slices.Sorted(maps.Keys(keys)) {
		if before[k] != after[k] {
			changes = append(changes, Change{Key: k, Before: before[k], After: after[k]})
		}
	}
	return changes
}
