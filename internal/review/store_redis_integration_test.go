//go:build integration

package review_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"citadel/internal/review"
	"citadel/pkg/platform/sentinel"
	"citadel/pkg/testutil/containers"
)

type RedisSessionStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *review.RedisSessionStore
}

func TestRedisSessionStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSessionStoreSuite))
}

func (s *RedisSessionStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = review.NewRedisSessionStore(s.redis.Client, time.Hour)
}

func (s *RedisSessionStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSessionStoreSuite) newSession() *review.Session {
	return &review.Session{
		ID:           uuid.NewString(),
		Reviewer:     "ana",
		CurrentIndex: 7,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func (s *RedisSessionStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	session := s.newSession()
	s.Require().NoError(s.store.Create(ctx, session))

	found, err := s.store.Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session, found)
}

func (s *RedisSessionStoreSuite) TestGetUnknownReturnsNotFound() {
	_, err := s.store.Get(context.Background(), uuid.NewString())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisSessionStoreSuite) TestSetIndexKeepsSession() {
	ctx := context.Background()
	session := s.newSession()
	s.Require().NoError(s.store.Create(ctx, session))

	s.Require().NoError(s.store.SetIndex(ctx, session.ID, 42))
	found, err := s.store.Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(42, found.CurrentIndex)
	s.Equal(session.Reviewer, found.Reviewer)

	s.Require().ErrorIs(s.store.SetIndex(ctx, uuid.NewString(), 1), sentinel.ErrNotFound)
}

func (s *RedisSessionStoreSuite) TestDelete() {
	ctx := context.Background()
	session := s.newSession()
	s.Require().NoError(s.store.Create(ctx, session))

	s.Require().NoError(s.store.Delete(ctx, session.ID))
	_, err := s.store.Get(ctx, session.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisSessionStoreSuite) TestExpiredSessionReadsAsNotFound() {
	ctx := context.Background()
	short := review.NewRedisSessionStore(s.redis.Client, time.Millisecond)
	session := s.newSession()
	s.Require().NoError(short.Create(ctx, session))

	time.Sleep(50 * time.Millisecond)
	_, err := short.Get(ctx, session.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
