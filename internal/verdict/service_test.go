package verdict_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"citadel/internal/sample"
	"citadel/internal/verdict"
	"citadel/internal/verdict/mocks"
	dErrors "citadel/pkg/domain-errors"
)

const fixtureSample = `[
	{"review_id": 1, "ref_number": 12, "pmc_id": "PMC1", "claimed_title": "A"},
	{"review_id": 2, "ref_number": 3, "pmc_id": "PMC2", "claimed_title": "B"},
	{"review_id": 3, "ref_number": 27, "pmc_id": "PMC3", "claimed_title": "C"},
	{"review_id": 4, "ref_number": 9, "pmc_id": "PMC4", "claimed_title": "D"}
]`

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newService(t *testing.T) (*verdict.Service, *verdict.InMemoryStore) {
	t.Helper()
	collection, err := sample.Parse([]byte(fixtureSample))
	require.NoError(t, err)
	store := verdict.NewInMemoryStore()
	svc := verdict.NewService(store, collection,
		verdict.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		verdict.WithClock(func() time.Time { return fixedNow }),
	)
	return svc, store
}

func TestSaveThenLoadAll(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	entry, err := svc.Save(ctx, "ana", 1, "fabricated", "not on pubmed")
	require.NoError(t, err)
	require.Equal(t, "PMC1", entry.PMCID)
	require.Equal(t, 12, entry.RefNumber)
	require.Equal(t, fixedNow, entry.ReviewedAt)

	all, err := svc.LoadAll(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, verdict.VerdictFabricated, all[1].Verdict)

	// Saving again replaces, never appends.
	_, err = svc.Save(ctx, "ana", 1, "correct", "")
	require.NoError(t, err)
	all, err = svc.LoadAll(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, verdict.VerdictCorrect, all[1].Verdict)
}

func TestSaveRejectsBadInput(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "ana", 1, "plausible", "")
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = svc.Save(ctx, "ana", 999, "unsure", "")
	require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSaveStoreFailureSurfacesAsUnavailable(t *testing.T) {
	collection, err := sample.Parse([]byte(fixtureSample))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Save(gomock.Any(), "ana", gomock.Any()).Return(errors.New("disk full"))

	svc := verdict.NewService(store, collection,
		verdict.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	_, err = svc.Save(context.Background(), "ana", 1, "unsure", "")
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	require.Equal(t, "could not save verdict", dErrors.Message(err))
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "ana", 1, "fabricated", "")
	require.NoError(t, err)
	_, err = svc.Save(ctx, "ana", 3, "unsure", "cannot find journal")
	require.NoError(t, err)

	doc, err := svc.Export(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, "ana", doc.Reviewer)
	require.Equal(t, 2, doc.TotalReviewed)
	require.Len(t, doc.Verdicts, 2)
	// Sorted by review_id ascending.
	require.Equal(t, 1, doc.Verdicts[0].ReviewID)
	require.Equal(t, 3, doc.Verdicts[1].ReviewID)

	// Import into a fresh reviewer store reproduces load_all exactly.
	n, err := svc.Import(ctx, "ana2", doc)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	original, err := svc.LoadAll(ctx, "ana")
	require.NoError(t, err)
	imported, err := svc.LoadAll(ctx, "ana2")
	require.NoError(t, err)
	require.Equal(t, original, imported)
}

func TestExportImportKeepsSubSecondTimestamps(t *testing.T) {
	collection, err := sample.Parse([]byte(fixtureSample))
	require.NoError(t, err)

	subSecond := time.Date(2026, 3, 14, 9, 26, 53, 123456789, time.UTC)
	svc := verdict.NewService(verdict.NewInMemoryStore(), collection,
		verdict.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		verdict.WithClock(func() time.Time { return subSecond }),
	)
	ctx := context.Background()

	_, err = svc.Save(ctx, "ana", 1, "fabricated", "")
	require.NoError(t, err)

	doc, err := svc.Export(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, "2026-03-14T09:26:53.123456789Z", doc.Verdicts[0].ReviewedAt)

	n, err := svc.Import(ctx, "ana2", doc)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	original, err := svc.LoadAll(ctx, "ana")
	require.NoError(t, err)
	imported, err := svc.LoadAll(ctx, "ana2")
	require.NoError(t, err)
	require.Equal(t, original, imported)
	require.Equal(t, subSecond, imported[1].ReviewedAt)
}

func TestImportIsIdempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "ana", 2, "citation_error", "")
	require.NoError(t, err)
	doc, err := svc.Export(ctx, "ana")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.Import(ctx, "ana2", doc)
		require.NoError(t, err)
	}

	all, err := svc.LoadAll(ctx, "ana2")
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, verdict.VerdictCitationError, all[2].Verdict)
}

func TestImportRejectsWholeDocumentOnBadEntry(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	doc := verdict.ExportDocument{
		Reviewer: "ana",
		Verdicts: []verdict.ExportEntry{
			{ReviewID: 1, Verdict: "fabricated"},
			{ReviewID: 999, Verdict: "unsure"}, // unknown record
		},
	}
	_, err := svc.Import(ctx, "ana", doc)
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	// Nothing applied: all-or-nothing.
	all, err := svc.LoadAll(ctx, "ana")
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestImportDefaultsLegacyFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	// Older export versions lack pmc_id, ref_number, and reviewed_at.
	doc := verdict.ExportDocument{
		Reviewer: "ana",
		Verdicts: []verdict.ExportEntry{{ReviewID: 2, Verdict: "correct"}},
	}
	_, err := svc.Import(ctx, "ana", doc)
	require.NoError(t, err)

	all, err := svc.LoadAll(ctx, "ana")
	require.NoError(t, err)
	entry := all[2]
	require.Equal(t, "PMC2", entry.PMCID)
	require.Equal(t, 3, entry.RefNumber)
	require.Equal(t, fixedNow, entry.ReviewedAt)
}

func TestProgressCounts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for id, v := range map[int]string{1: "fabricated", 2: "fabricated", 3: "unsure"} {
		_, err := svc.Save(ctx, "ana", id, v, "")
		require.NoError(t, err)
	}

	p, err := svc.Progress(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, 3, p.Reviewed)
	require.Equal(t, 2, p.Counts[verdict.VerdictFabricated])
	require.Equal(t, 1, p.Counts[verdict.VerdictUnsure])
}
