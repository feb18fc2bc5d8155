package verdict

import (
	"context"
	"log/slog"
	"time"

	"citadel/internal/sample"
	"citadel/internal/verdict/metrics"
	dErrors "citadel/pkg/domain-errors"
)

// Service orchestrates verdict persistence for one deployment. It validates
// against the review sample, stamps timestamps, and translates store
// failures into domain errors. Navigation never reaches this type: only an
// explicit save or import writes.
type Service struct {
	store   Store
	sample  *sample.Collection
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the timestamp source in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a Service.
func NewService(store Store, collection *sample.Collection, opts ...Option) *Service {
	s := &Service{
		store:  store,
		sample: collection,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Durable reports whether the backing store survives restarts.
func (s *Service) Durable() bool { return s.store.Durable() }

// Init ensures the reviewer's storage exists. Idempotent.
func (s *Service) Init(ctx context.Context, reviewer string) error {
	if err := s.store.Init(ctx, reviewer); err != nil {
		s.logger.ErrorContext(ctx, "verdict store init failed", "reviewer", reviewer, "error", err)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not prepare verdict storage")
	}
	return nil
}

// Save upserts the reviewer's verdict for one record, stamping reviewed_at.
// The record must exist in the sample; the verdict must be a known category.
func (s *Service) Save(ctx context.Context, reviewer string, reviewID int, rawVerdict, notes string) (Entry, error) {
	v, err := ParseVerdict(rawVerdict)
	if err != nil {
		return Entry{}, err
	}
	record, ok := s.sample.ByID(reviewID)
	if !ok {
		return Entry{}, dErrors.Newf(dErrors.CodeNotFound, "no record with review_id %d", reviewID)
	}

	entry := Entry{
		ReviewID:   reviewID,
		PMCID:      record.PMCID,
		RefNumber:  record.RefNumber,
		Verdict:    v,
		Notes:      notes,
		ReviewedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, reviewer, entry); err != nil {
		s.logger.ErrorContext(ctx, "verdict save failed",
			"reviewer", reviewer,
			"review_id", reviewID,
			"error", err,
		)
		return Entry{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not save verdict")
	}

	if s.metrics != nil {
		s.metrics.IncrementSaved(string(v))
	}
	s.logger.InfoContext(ctx, "verdict saved",
		"reviewer", reviewer,
		"review_id", reviewID,
		"verdict", string(v),
	)
	return entry, nil
}

// LoadAll returns the reviewer's verdicts keyed by review_id. Empty map for
// a reviewer with no storage yet.
func (s *Service) LoadAll(ctx context.Context, reviewer string) (map[int]Entry, error) {
	entries, err := s.store.LoadAll(ctx, reviewer)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not load verdicts")
	}
	return entries, nil
}

// Reviewers lists every reviewer with an initialized store, sorted.
func (s *Service) Reviewers(ctx context.Context) ([]string, error) {
	reviewers, err := s.store.ListReviewers(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not list reviewers")
	}
	return reviewers, nil
}

// Export produces the self-describing snapshot for download: reviewer,
// export timestamp, count, and every entry sorted by review_id.
func (s *Service) Export(ctx context.Context, reviewer string) (ExportDocument, error) {
	entries, err := s.store.List(ctx, reviewer)
	if err != nil {
		return ExportDocument{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not load verdicts")
	}

	doc := ExportDocument{
		Reviewer:      reviewer,
		ExportedAt:    s.now().UTC(),
		TotalReviewed: len(entries),
		Verdicts:      make([]ExportEntry, 0, len(entries)),
	}
	for _, e := range entries {
		doc.Verdicts = append(doc.Verdicts, ExportEntry{
			ReviewID:   e.ReviewID,
			Verdict:    string(e.Verdict),
			Notes:      e.Notes,
			ReviewedAt: e.ReviewedAt.UTC().Format(time.RFC3339Nano),
			PMCID:      e.PMCID,
			RefNumber:  e.RefNumber,
		})
	}

	if s.metrics != nil {
		s.metrics.IncrementExports()
	}
	return doc, nil
}

// Import upserts every entry of an export document into the reviewer's
// store. The whole document is validated first and applied in one atomic
// batch: a bad entry rejects the entire import with nothing written.
// Re-importing the same document is a no-op beyond refreshed rows.
func (s *Service) Import(ctx context.Context, reviewer string, doc ExportDocument) (int, error) {
	entries := make([]Entry, 0, len(doc.Verdicts))
	for i, raw := range doc.Verdicts {
		v, err := ParseVerdict(raw.Verdict)
		if err != nil {
			return 0, dErrors.Newf(dErrors.CodeValidation, "entry %d: unknown verdict %q", i, raw.Verdict)
		}
		if !s.sample.Has(raw.ReviewID) {
			return 0, dErrors.Newf(dErrors.CodeValidation, "entry %d: no record with review_id %d", i, raw.ReviewID)
		}

		entry := Entry{
			ReviewID:   raw.ReviewID,
			PMCID:      raw.PMCID,
			RefNumber:  raw.RefNumber,
			Verdict:    v,
			Notes:      raw.Notes,
			ReviewedAt: parseReviewedAt(raw.ReviewedAt, s.now),
		}
		// Older exports omit the denormalized fields; default them from
		// the sample.
		if entry.PMCID == "" || entry.RefNumber == 0 {
			if record, ok := s.sample.ByID(raw.ReviewID); ok {
				if entry.PMCID == "" {
					entry.PMCID = record.PMCID
				}
				if entry.RefNumber == 0 {
					entry.RefNumber = record.RefNumber
				}
			}
		}
		entries = append(entries, entry)
	}

	if err := s.store.SaveAll(ctx, reviewer, entries); err != nil {
		s.logger.ErrorContext(ctx, "verdict import failed",
			"reviewer", reviewer,
			"entries", len(entries),
			"error", err,
		)
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not import verdicts")
	}

	if s.metrics != nil {
		s.metrics.AddImported(len(entries))
	}
	s.logger.InfoContext(ctx, "verdicts imported",
		"reviewer", reviewer,
		"entries", len(entries),
	)
	return len(entries), nil
}

// Progress returns the reviewed count and the per-category tally.
func (s *Service) Progress(ctx context.Context, reviewer string) (Progress, error) {
	entries, err := s.store.LoadAll(ctx, reviewer)
	if err != nil {
		return Progress{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not load verdicts")
	}
	p := Progress{Reviewed: len(entries), Counts: make(map[Verdict]int)}
	for _, e := range entries {
		p.Counts[e.Verdict]++
	}
	return p, nil
}

// parseReviewedAt accepts RFC3339 and the timezone-less ISO form older
// exports carried; anything unparseable defaults to the import time.
func parseReviewedAt(raw string, now func() time.Time) time.Time {
	if raw == "" {
		return now().UTC()
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02T15:04:05.999999", raw); err == nil {
		return ts.UTC()
	}
	return now().UTC()
}
