// Package admin exposes operator-facing views over every reviewer's
// verdicts: progress counts and a combined backup document.
package admin

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"citadel/internal/verdict"
)

// VerdictReader is the slice of the verdict service the admin views need.
type VerdictReader interface {
	Reviewers(ctx context.Context) ([]string, error)
	Progress(ctx context.Context, reviewer string) (verdict.Progress, error)
	Export(ctx context.Context, reviewer string) (verdict.ExportDocument, error)
}

// ProgressReport maps reviewer IDs to their progress counts.
type ProgressReport struct {
	Total     int                         `json:"total"`
	Reviewers map[string]verdict.Progress `json:"reviewers"`
}

// BackupDocument bundles every reviewer's export into one download so an
// operator can snapshot the whole deployment at once.
type BackupDocument struct {
	ExportedAt time.Time                 `json:"exported_at"`
	Reviewers  map[string]ReviewerBackup `json:"reviewers"`
}

type ReviewerBackup struct {
	TotalReviewed int                   `json:"total_reviewed"`
	Verdicts      []verdict.ExportEntry `json:"verdicts"`
}

type Service struct {
	verdicts VerdictReader
	total    int
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs the admin service. total is the sample size, used
// only for reporting.
func NewService(verdicts VerdictReader, total int, opts ...Option) *Service {
	s := &Service{
		verdicts: verdicts,
		total:    total,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Progress reports per-reviewer counts across all known reviewers.
func (s *Service) Progress(ctx context.Context) (ProgressReport, error) {
	reviewers, err := s.verdicts.Reviewers(ctx)
	if err != nil {
		return ProgressReport{}, err
	}

	report := ProgressReport{
		Total:     s.total,
		Reviewers: make(map[string]verdict.Progress, len(reviewers)),
	}
	for _, reviewer := range reviewers {
		progress, err := s.verdicts.Progress(ctx, reviewer)
		if err != nil {
			return ProgressReport{}, err
		}
		report.Reviewers[reviewer] = progress
	}
	return report, nil
}

// Backup exports every reviewer concurrently and bundles the results. A
// failure for any reviewer fails the whole backup; a partial backup would
// be worse than none.
func (s *Service) Backup(ctx context.Context) (BackupDocument, error) {
	reviewers, err := s.verdicts.Reviewers(ctx)
	if err != nil {
		return BackupDocument{}, err
	}

	doc := BackupDocument{
		ExportedAt: s.now().UTC(),
		Reviewers:  make(map[string]ReviewerBackup, len(reviewers)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, reviewer := range reviewers {
		g.Go(func() error {
			export, err := s.verdicts.Export(gctx, reviewer)
			if err != nil {
				return err
			}
			mu.Lock()
			doc.Reviewers[reviewer] = ReviewerBackup{
				TotalReviewed: export.TotalReviewed,
				Verdicts:      export.Verdicts,
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BackupDocument{}, err
	}

	s.logger.InfoContext(ctx, "backup generated", "reviewers", len(reviewers))
	return doc, nil
}
