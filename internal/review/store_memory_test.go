package review

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"citadel/pkg/platform/sentinel"
)

type SessionStoreSuite struct {
	suite.Suite
	store *InMemorySessionStore
}

func (s *SessionStoreSuite) SetupTest() {
	s.store = NewInMemorySessionStore()
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

func (s *SessionStoreSuite) newSession(index int) *Session {
	return &Session{
		ID:           uuid.NewString(),
		Reviewer:     "ana",
		CurrentIndex: index,
		CreatedAt:    time.Now().UTC(),
	}
}

func (s *SessionStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	session := s.newSession(3)
	s.Require().NoError(s.store.Create(ctx, session))

	found, err := s.store.Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session, found)
}

func (s *SessionStoreSuite) TestGetUnknownReturnsNotFound() {
	_, err := s.store.Get(context.Background(), uuid.NewString())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *SessionStoreSuite) TestSetIndex() {
	ctx := context.Background()
	session := s.newSession(0)
	s.Require().NoError(s.store.Create(ctx, session))

	s.Require().NoError(s.store.SetIndex(ctx, session.ID, 49))
	found, err := s.store.Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(49, found.CurrentIndex)

	s.Require().ErrorIs(s.store.SetIndex(ctx, uuid.NewString(), 1), sentinel.ErrNotFound)
}

func (s *SessionStoreSuite) TestDelete() {
	ctx := context.Background()
	session := s.newSession(0)
	s.Require().NoError(s.store.Create(ctx, session))

	s.Require().NoError(s.store.Delete(ctx, session.ID))
	_, err := s.store.Get(ctx, session.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	// Deleting twice is fine.
	s.Require().NoError(s.store.Delete(ctx, session.ID))
}

func (s *SessionStoreSuite) TestGetReturnsCopy() {
	ctx := context.Background()
	session := s.newSession(5)
	s.Require().NoError(s.store.Create(ctx, session))

	found, err := s.store.Get(ctx, session.ID)
	s.Require().NoError(err)
	found.CurrentIndex = 99

	again, err := s.store.Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(5, again.CurrentIndex)
}
