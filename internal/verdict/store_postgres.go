package verdict

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS reviewers (
	reviewer   TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS verdicts (
	reviewer    TEXT NOT NULL,
	review_id   INTEGER NOT NULL,
	pmc_id      TEXT NOT NULL DEFAULT '',
	ref_number  INTEGER NOT NULL DEFAULT 0,
	verdict     TEXT NOT NULL,
	notes       TEXT NOT NULL DEFAULT '',
	reviewed_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (reviewer, review_id)
)`

// PostgresStore keeps every reviewer's verdicts in one PostgreSQL database,
// partitioned by the reviewer column. Reviewer stores stay logically
// disjoint: every statement is scoped to a single reviewer.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres connects and ensures the schema exists. The schema is fixed
// and small; there is deliberately no migration machinery.
func NewPostgres(url string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresFromDB wraps an existing connection (used by integration
// tests that manage their own container lifecycle).
func NewPostgresFromDB(db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema() error {
	if _, err := s.db.Exec(postgresSchema); err != nil {
		return fmt.Errorf("create verdicts schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Init(ctx context.Context, reviewer string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reviewers (reviewer, created_at) VALUES ($1, $2)
		 ON CONFLICT (reviewer) DO NOTHING`,
		reviewer, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("init reviewer: %w", err)
	}
	return nil
}

const postgresUpsert = `
INSERT INTO verdicts (reviewer, review_id, pmc_id, ref_number, verdict, notes, reviewed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (reviewer, review_id) DO UPDATE SET
	pmc_id = EXCLUDED.pmc_id,
	ref_number = EXCLUDED.ref_number,
	verdict = EXCLUDED.verdict,
	notes = EXCLUDED.notes,
	reviewed_at = EXCLUDED.reviewed_at`

func (s *PostgresStore) Save(ctx context.Context, reviewer string, entry Entry) error {
	_, err := s.db.ExecContext(ctx, postgresUpsert,
		reviewer, entry.ReviewID, entry.PMCID, entry.RefNumber,
		string(entry.Verdict), entry.Notes, entry.ReviewedAt.UTC())
	if err != nil {
		return fmt.Errorf("save verdict: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveAll(ctx context.Context, reviewer string, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, postgresUpsert,
			reviewer, e.ReviewID, e.PMCID, e.RefNumber,
			string(e.Verdict), e.Notes, e.ReviewedAt.UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("import verdict %d: %w", e.ReviewID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadAll(ctx context.Context, reviewer string) (map[int]Entry, error) {
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

func (s *PostgresStore) List(ctx context.Context, reviewer string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT review_id, pmc_id, ref_number, verdict, notes, reviewed_at
		 FROM verdicts WHERE reviewer = $1 ORDER BY review_id`, reviewer)
	if err != nil {
		return nil, fmt.Errorf("list verdicts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var verdict string
		if err := rows.Scan(&e.ReviewID, &e.PMCID, &e.RefNumber, &verdict, &e.Notes, &e.ReviewedAt); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		e.Verdict = Verdict(verdict)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verdicts: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) ListReviewers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT reviewer FROM reviewers
		 UNION SELECT DISTINCT reviewer FROM verdicts
		 ORDER BY reviewer`)
	if err != nil {
		return nil, fmt.Errorf("list reviewers: %w", err)
	}
	defer rows.Close()

	var reviewers []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("scan reviewer: %w", err)
		}
		reviewers = append(reviewers, r)
	}
	return reviewers, rows.Err()
}

func (s *PostgresStore) Durable() bool { return true }

func (s *PostgresStore) Close() error { return s.db.Close() }
