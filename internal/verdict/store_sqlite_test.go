package verdict

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newSQLiteStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, dir
}

func TestSQLiteUpsertReplaces(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()

	entry := Entry{
		ReviewID:   1,
		PMCID:      "PMC9000001",
		RefNumber:  12,
		Verdict:    VerdictFabricated,
		Notes:      "",
		ReviewedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, "ana", entry); err != nil {
		t.Fatalf("save: %v", err)
	}

	entry.Verdict = VerdictCitationError
	entry.Notes = "paper exists, wrong pmid"
	if err := store.Save(ctx, "ana", entry); err != nil {
		t.Fatalf("second save: %v", err)
	}

	all, err := store.LoadAll(ctx, "ana")
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 entry after upsert, got %d", len(all))
	}
	got := all[1]
	if got.Verdict != VerdictCitationError || got.Notes != "paper exists, wrong pmid" {
		t.Fatalf("unexpected entry after upsert: %+v", got)
	}
	if !got.ReviewedAt.Equal(entry.ReviewedAt) {
		t.Fatalf("reviewed_at round-trip: want %v, got %v", entry.ReviewedAt, got.ReviewedAt)
	}
}

func TestSQLiteKeepsSubSecondTimestamps(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()

	want := time.Date(2026, 2, 1, 10, 0, 0, 123456789, time.UTC)
	entry := Entry{
		ReviewID:   7,
		PMCID:      "PMC9000007",
		RefNumber:  3,
		Verdict:    VerdictUnsure,
		ReviewedAt: want,
	}
	if err := store.Save(ctx, "ana", entry); err != nil {
		t.Fatalf("save: %v", err)
	}

	all, err := store.LoadAll(ctx, "ana")
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if got := all[7].ReviewedAt; !got.Equal(want) {
		t.Errorf("reviewed_at = %v, want %v", got, want)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	store, dir := newSQLiteStore(t)
	ctx := context.Background()

	entry := Entry{ReviewID: 4, Verdict: VerdictUnsure, ReviewedAt: time.Now().UTC()}
	if err := store.Save(ctx, "ana", entry); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	all, err := reopened.LoadAll(ctx, "ana")
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if len(all) != 1 || all[4].Verdict != VerdictUnsure {
		t.Fatalf("expected persisted entry after reopen, got %+v", all)
	}
	if !reopened.Durable() {
		t.Fatalf("sqlite store must report durable")
	}
}

func TestSQLiteListDoesNotCreateFiles(t *testing.T) {
	store, dir := newSQLiteStore(t)

	entries, err := store.List(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
	if _, err := os.Stat(filepath.Join(dir, "reviewer_ghost.db")); !os.IsNotExist(err) {
		t.Fatalf("reading must not allocate storage for unknown reviewers")
	}
}

func TestSQLiteInitAllocatesStorageIdempotently(t *testing.T) {
	store, dir := newSQLiteStore(t)
	ctx := context.Background()

	if err := store.Init(ctx, "ana"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.Init(ctx, "ana"); err != nil {
		t.Fatalf("second init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "reviewer_ana.db")); err != nil {
		t.Fatalf("expected reviewer db file: %v", err)
	}

	reviewers, err := store.ListReviewers(ctx)
	if err != nil {
		t.Fatalf("list reviewers: %v", err)
	}
	if len(reviewers) != 1 || reviewers[0] != "ana" {
		t.Fatalf("expected [ana], got %v", reviewers)
	}
}

func TestSQLiteSaveAllIsAtomicBatch(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	batch := []Entry{
		{ReviewID: 1, Verdict: VerdictFabricated, ReviewedAt: now},
		{ReviewID: 2, Verdict: VerdictCorrect, ReviewedAt: now},
		{ReviewID: 3, Verdict: VerdictUnsure, ReviewedAt: now},
	}
	if err := store.SaveAll(ctx, "ana", batch); err != nil {
		t.Fatalf("save all: %v", err)
	}

	entries, err := store.List(ctx, "ana")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []int{1, 2, 3} {
		if entries[i].ReviewID != want {
			t.Fatalf("entries not sorted by review_id: %+v", entries)
		}
	}
}
