package verdict

import (
	"context"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

// Store persists verdict entries keyed by reviewer identifier. Each
// reviewer owns a disjoint table; implementations never share writable
// state between reviewers, so no cross-reviewer locking is required.
//
// Stores are interface-driven to keep the domain logic testable and to
// allow swapping in-memory, file-backed, or external persistence without
// rewiring business code.
type Store interface {
	// Init idempotently ensures the reviewer's storage exists. Safe to
	// call on every request.
	Init(ctx context.Context, reviewer string) error

	// Save upserts one entry by review_id. The upsert is atomic: it
	// either fully applies or not at all.
	Save(ctx context.Context, reviewer string, entry Entry) error

	// SaveAll upserts a batch atomically (all-or-nothing). Used by
	// import so a mid-document failure never partially applies.
	SaveAll(ctx context.Context, reviewer string, entries []Entry) error

	// LoadAll returns the reviewer's entries keyed by review_id. A
	// reviewer with no storage yet yields an empty map, not an error.
	LoadAll(ctx context.Context, reviewer string) (map[int]Entry, error)

	// List returns the reviewer's entries sorted by review_id ascending.
	List(ctx context.Context, reviewer string) ([]Entry, error)

	// ListReviewers returns every reviewer with storage, sorted.
	ListReviewers(ctx context.Context) ([]string, error)

	// Durable reports whether entries survive process restarts. When
	// false, clients are told to export regularly.
	Durable() bool
}
