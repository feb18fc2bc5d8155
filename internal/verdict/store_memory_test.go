package verdict

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) entry(reviewID int, v Verdict) Entry {
	return Entry{
		ReviewID:   reviewID,
		PMCID:      "PMC123",
		RefNumber:  7,
		Verdict:    v,
		Notes:      "checked on pubmed",
		ReviewedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (s *MemoryStoreSuite) TestUpsertReplacesByReviewID() {
	s.Require().NoError(s.store.Init(s.ctx, "ana"))
	s.Require().NoError(s.store.Save(s.ctx, "ana", s.entry(1, VerdictFabricated)))
	s.Require().NoError(s.store.Save(s.ctx, "ana", s.entry(1, VerdictCorrect)))

	all, err := s.store.LoadAll(s.ctx, "ana")
	s.Require().NoError(err)
	s.Len(all, 1)
	s.Equal(VerdictCorrect, all[1].Verdict)
}

func (s *MemoryStoreSuite) TestLoadAllWithoutInitIsEmpty() {
	all, err := s.store.LoadAll(s.ctx, "ghost")
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *MemoryStoreSuite) TestListSortedByReviewID() {
	for _, id := range []int{42, 3, 17} {
		s.Require().NoError(s.store.Save(s.ctx, "ana", s.entry(id, VerdictUnsure)))
	}
	entries, err := s.store.List(s.ctx, "ana")
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal([]int{3, 17, 42}, []int{entries[0].ReviewID, entries[1].ReviewID, entries[2].ReviewID})
}

func (s *MemoryStoreSuite) TestReviewerStoresAreDisjoint() {
	s.Require().NoError(s.store.Save(s.ctx, "ana", s.entry(1, VerdictFabricated)))
	s.Require().NoError(s.store.Save(s.ctx, "ben", s.entry(1, VerdictCorrect)))

	ana, err := s.store.LoadAll(s.ctx, "ana")
	s.Require().NoError(err)
	ben, err := s.store.LoadAll(s.ctx, "ben")
	s.Require().NoError(err)

	s.Equal(VerdictFabricated, ana[1].Verdict)
	s.Equal(VerdictCorrect, ben[1].Verdict)
}

func (s *MemoryStoreSuite) TestSaveAllAppliesBatch() {
	batch := []Entry{s.entry(2, VerdictUnsure), s.entry(5, VerdictCitationError)}
	s.Require().NoError(s.store.SaveAll(s.ctx, "ana", batch))

	all, err := s.store.LoadAll(s.ctx, "ana")
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal(VerdictCitationError, all[5].Verdict)
}

func (s *MemoryStoreSuite) TestListReviewersSorted() {
	s.Require().NoError(s.store.Init(s.ctx, "zoe"))
	s.Require().NoError(s.store.Init(s.ctx, "ana"))

	reviewers, err := s.store.ListReviewers(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"ana", "zoe"}, reviewers)
}

func (s *MemoryStoreSuite) TestNotDurable() {
	s.False(s.store.Durable())
}
