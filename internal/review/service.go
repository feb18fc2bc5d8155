package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"citadel/internal/review/metrics"
	"citadel/internal/sample"
	"citadel/internal/verdict"
	dErrors "citadel/pkg/domain-errors"
)

// StorageNotice is surfaced to reviewers when verdicts are held in
// non-durable storage.
const StorageNotice = "verdicts are stored in memory only and will be lost on restart; export regularly"

// Service drives a review session: login, navigation, saving verdicts
// and export/import, on top of the verdict service and a session store.
type Service struct {
	sessions SessionStore
	verdicts *verdict.Service
	sample   *sample.Collection
	tokens   *TokenService
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(sessions SessionStore, verdicts *verdict.Service, collection *sample.Collection, tokens *TokenService, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		verdicts: verdicts,
		sample:   collection,
		tokens:   tokens,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is everything the client needs to start reviewing.
type LoginResult struct {
	Token          string
	Reviewer       string
	Total          int
	Position       int
	ResumeReviewID int
	Imported       int
	Durable        bool
	Notice         string
}

// Login normalizes the supplied name, initializes the reviewer's verdict
// store, optionally imports a previously exported document, and opens a
// session positioned at the first unreviewed record.
func (s *Service) Login(ctx context.Context, name string, importDoc *verdict.ExportDocument) (*LoginResult, error) {
	reviewer := verdict.NormalizeReviewer(name)
	if reviewer == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reviewer name must not be empty")
	}

	if err := s.verdicts.Init(ctx, reviewer); err != nil {
		return nil, err
	}

	imported := 0
	if importDoc != nil {
		n, err := s.verdicts.Import(ctx, reviewer, *importDoc)
		if err != nil {
			return nil, err
		}
		imported = n
	}

	reviewed, err := s.verdicts.LoadAll(ctx, reviewer)
	if err != nil {
		return nil, err
	}

	total := s.sample.Total()
	session := &Session{
		ID:           uuid.NewString(),
		Reviewer:     reviewer,
		CurrentIndex: StartIndex(reviewed, total),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not create session")
	}

	token, err := s.tokens.Generate(reviewer, session.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue session token")
	}

	result := &LoginResult{
		Token:    token,
		Reviewer: reviewer,
		Total:    total,
		Position: session.CurrentIndex,
		Imported: imported,
		Durable:  s.verdicts.Durable(),
	}
	if id, ok := NextUnreviewed(reviewed, total); ok {
		result.ResumeReviewID = id
	}
	if !result.Durable {
		result.Notice = StorageNotice
	}

	s.metrics.IncrementLogins()
	s.logger.InfoContext(ctx, "reviewer logged in",
		"reviewer", reviewer,
		"session_id", session.ID,
		"position", session.CurrentIndex,
		"imported", imported,
	)
	return result, nil
}

// Logout deletes the session. Verdicts are untouched.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not end session")
	}
	s.metrics.IncrementLogouts()
	return nil
}

// CurrentView is the full state needed to render one record.
type CurrentView struct {
	Record         sample.Record
	Links          sample.Links
	Entry          *verdict.Entry
	Position       int
	Total          int
	Progress       verdict.Progress
	NextUnreviewed int
}

// Current returns the record at the session's current index together
// with any existing verdict for it and overall progress.
func (s *Service) Current(ctx context.Context, sessionID string) (*CurrentView, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.viewAt(ctx, session.Reviewer, session.CurrentIndex)
}

func (s *Service) viewAt(ctx context.Context, reviewer string, index int) (*CurrentView, error) {
	total := s.sample.Total()
	record := s.sample.At(index)

	reviewed, err := s.verdicts.LoadAll(ctx, reviewer)
	if err != nil {
		return nil, err
	}

	view := &CurrentView{
		Record:   record,
		Links:    sample.BuildLinks(record),
		Position: index,
		Total:    total,
	}
	if entry, ok := reviewed[record.ReviewID]; ok {
		view.Entry = &entry
	}
	view.Progress = verdict.Progress{Reviewed: len(reviewed), Counts: countByVerdict(reviewed)}
	if id, ok := NextUnreviewed(reviewed, total); ok {
		view.NextUnreviewed = id
	}
	return view, nil
}

func countByVerdict(reviewed map[int]verdict.Entry) map[verdict.Verdict]int {
	counts := make(map[verdict.Verdict]int)
	for _, e := range reviewed {
		counts[e.Verdict]++
	}
	return counts
}

// SaveVerdict records a verdict for the currently displayed record and
// advances to the next one. The index is left unchanged if the save
// fails, so the reviewer can retry.
func (s *Service) SaveVerdict(ctx context.Context, sessionID, rawVerdict, notes string) (*CurrentView, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	record := s.sample.At(session.CurrentIndex)
	if _, err := s.verdicts.Save(ctx, session.Reviewer, record.ReviewID, rawVerdict, notes); err != nil {
		return nil, err
	}

	next := Advance(session.CurrentIndex, s.sample.Total())
	if err := s.sessions.SetIndex(ctx, sessionID, next); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not update session")
	}

	s.metrics.IncrementAction("save")
	return s.viewAt(ctx, session.Reviewer, next)
}

// Skip advances without writing a verdict.
func (s *Service) Skip(ctx context.Context, sessionID string) (*CurrentView, error) {
	s.metrics.IncrementAction("skip")
	return s.move(ctx, sessionID, func(session *Session) int {
		return Advance(session.CurrentIndex, s.sample.Total())
	})
}

// Prev steps back one record.
func (s *Service) Prev(ctx context.Context, sessionID string) (*CurrentView, error) {
	s.metrics.IncrementAction("prev")
	return s.move(ctx, sessionID, func(session *Session) int {
		return Retreat(session.CurrentIndex)
	})
}

// JumpTo moves to an explicit record number, clamping silently.
func (s *Service) JumpTo(ctx context.Context, sessionID string, target int) (*CurrentView, error) {
	s.metrics.IncrementAction("jump")
	return s.move(ctx, sessionID, func(session *Session) int {
		return Jump(target, s.sample.Total())
	})
}

// JumpToUnreviewed moves to the first unreviewed record, or stays put
// when everything has been reviewed.
func (s *Service) JumpToUnreviewed(ctx context.Context, sessionID string) (*CurrentView, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	reviewed, err := s.verdicts.LoadAll(ctx, session.Reviewer)
	if err != nil {
		return nil, err
	}

	next := session.CurrentIndex
	if id, ok := NextUnreviewed(reviewed, s.sample.Total()); ok {
		next = id - 1
	}
	if err := s.sessions.SetIndex(ctx, sessionID, next); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not update session")
	}
	s.metrics.IncrementAction("jump_unreviewed")
	return s.viewAt(ctx, session.Reviewer, next)
}

func (s *Service) move(ctx context.Context, sessionID string, transition func(*Session) int) (*CurrentView, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next := transition(session)
	if err := s.sessions.SetIndex(ctx, sessionID, next); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not update session")
	}
	return s.viewAt(ctx, session.Reviewer, next)
}

// Verdicts lists the reviewer's saved verdicts ordered by review ID.
func (s *Service) Verdicts(ctx context.Context, sessionID string) ([]verdict.Entry, int, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	reviewed, err := s.verdicts.LoadAll(ctx, session.Reviewer)
	if err != nil {
		return nil, 0, err
	}
	entries := make([]verdict.Entry, 0, len(reviewed))
	for id := 1; id <= s.sample.Total(); id++ {
		if e, ok := reviewed[id]; ok {
			entries = append(entries, e)
		}
	}
	return entries, s.sample.Total(), nil
}

// Export produces the reviewer's portable verdict document.
func (s *Service) Export(ctx context.Context, sessionID string) (verdict.ExportDocument, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return verdict.ExportDocument{}, err
	}
	return s.verdicts.Export(ctx, session.Reviewer)
}

// Import merges a previously exported document into the reviewer's
// store. The whole document is applied atomically or not at all.
func (s *Service) Import(ctx context.Context, sessionID string, doc verdict.ExportDocument) (int, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return s.verdicts.Import(ctx, session.Reviewer, doc)
}

// Durable reports whether verdicts survive a restart.
func (s *Service) Durable() bool { return s.verdicts.Durable() }

func (s *Service) getSession(ctx context.Context, sessionID string) (*Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "session not found")
	}
	return session, nil
}
