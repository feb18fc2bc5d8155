package verdict

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS verdicts (
	review_id   INTEGER PRIMARY KEY,
	pmc_id      TEXT NOT NULL DEFAULT '',
	ref_number  INTEGER NOT NULL DEFAULT 0,
	verdict     TEXT NOT NULL,
	notes       TEXT NOT NULL DEFAULT '',
	reviewed_at TEXT NOT NULL
)`

// SQLiteStore persists verdicts in one SQLite file per reviewer under a
// data directory. The file-per-identity layout keeps reviewer stores
// physically disjoint, and a single-statement upsert keeps each save atomic.
type SQLiteStore struct {
	dir string

	mu      sync.Mutex
	handles map[string]*sql.DB
}

// NewSQLiteStore creates the data directory if needed and returns a store.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create verdicts dir: %w", err)
	}
	return &SQLiteStore{dir: dir, handles: make(map[string]*sql.DB)}, nil
}

func (s *SQLiteStore) path(reviewer string) string {
	return filepath.Join(s.dir, "reviewer_"+reviewer+".db")
}

// open returns the cached handle for a reviewer, creating the database file
// and schema on first use.
func (s *SQLiteStore) open(reviewer string) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if db, ok := s.handles[reviewer]; ok {
		return db, nil
	}

	db, err := sql.Open("sqlite", s.path(reviewer))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create verdicts schema: %w", err)
	}

	s.handles[reviewer] = db
	return db, nil
}

func (s *SQLiteStore) Init(_ context.Context, reviewer string) error {
	_, err := s.open(reviewer)
	return err
}

const sqliteUpsert = `
INSERT INTO verdicts (review_id, pmc_id, ref_number, verdict, notes, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(review_id) DO UPDATE SET
	pmc_id = excluded.pmc_id,
	ref_number = excluded.ref_number,
	verdict = excluded.verdict,
	notes = excluded.notes,
	reviewed_at = excluded.reviewed_at`

func (s *SQLiteStore) Save(ctx context.Context, reviewer string, entry Entry) error {
	db, err := s.open(reviewer)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, sqliteUpsert,
		entry.ReviewID, entry.PMCID, entry.RefNumber,
		string(entry.Verdict), entry.Notes, entry.ReviewedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save verdict: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveAll(ctx context.Context, reviewer string, entries []Entry) error {
	db, err := s.open(reviewer)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, sqliteUpsert,
			e.ReviewID, e.PMCID, e.RefNumber,
			string(e.Verdict), e.Notes, e.ReviewedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("import verdict %d: %w", e.ReviewID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadAll(ctx context.Context, reviewer string) (map[int]Entry, error) {
	entries, err := s.List(ctx, reviewer)
	if err != nil {
		return nil, err
	}
	out := make(map[int]Entry, len(entries))
	for _, e := range entries {
		out[e.ReviewID] = e
	}
	return out, nil
}

func (s *SQLiteStore) List(ctx context.Context, reviewer string) ([]Entry, error) {
	// A reviewer with no database yet has zero verdicts; avoid creating
	// an empty file just by reading.
	if _, err := os.Stat(s.path(reviewer)); os.IsNotExist(err) {
		return nil, nil
	}

	db, err := s.open(reviewer)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT review_id, pmc_id, ref_number, verdict, notes, reviewed_at
		 FROM verdicts ORDER BY review_id`)
	if err != nil {
		return nil, fmt.Errorf("list verdicts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var verdict, reviewedAt string
		if err := rows.Scan(&e.ReviewID, &e.PMCID, &e.RefNumber, &verdict, &e.Notes, &reviewedAt); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		e.Verdict = Verdict(verdict)
		if ts, err := time.Parse(time.RFC3339Nano, reviewedAt); err == nil {
			e.ReviewedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verdicts: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) ListReviewers(_ context.Context) ([]string, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read verdicts dir: %w", err)
	}
	var reviewers []string
	for _, d := range dirents {
		name := d.Name()
		if strings.HasPrefix(name, "reviewer_") && strings.HasSuffix(name, ".db") {
			reviewers = append(reviewers, strings.TrimSuffix(strings.TrimPrefix(name, "reviewer_"), ".db"))
		}
	}
	sort.Strings(reviewers)
	return reviewers, nil
}

func (s *SQLiteStore) Durable() bool { return true }

// Close releases all cached database handles.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for reviewer, db := range s.handles {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.handles, reviewer)
	}
	return firstErr
}
