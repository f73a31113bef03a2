package attempt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veriface/internal/verification"
	"veriface/internal/verification/ports"
	id "veriface/pkg/domain"
	"veriface/pkg/platform/sentinel"
)

// InMemorySuite tests the in-memory attempt store.
type InMemorySuite struct {
	suite.Suite

	store *InMemory
	ctx   context.Context
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemorySuite) newAttempt(createdAt time.Time, status verification.Status) *verification.Attempt {
	return &verification.Attempt{
		ID:             id.NewAttemptID(),
		BankerID:       id.NewBankerID(),
		CreatedAt:      createdAt,
		Status:         status,
		Recommendation: verification.RecommendManualReview,
	}
}

func (s *InMemorySuite) TestSaveAndFind() {
	attempt := s.newAttempt(time.Now(), verification.StatusScored)
	s.Require().NoError(s.store.Save(s.ctx, attempt))

	found, err := s.store.FindByID(s.ctx, attempt.ID)
	s.Require().NoError(err)
	s.Equal(attempt.ID, found.ID)
	s.NotSame(attempt, found, "store must return copies")
}

func (s *InMemorySuite) TestFindMissing() {
	_, err := s.store.FindByID(s.ctx, id.NewAttemptID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestListFilters() {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	old := s.newAttempt(base, verification.StatusScored)
	recent := s.newAttempt(base.Add(48*time.Hour), verification.StatusFailed)
	s.Require().NoError(s.store.Save(s.ctx, old))
	s.Require().NoError(s.store.Save(s.ctx, recent))

	s.Run("newest first", func() {
		out, err := s.store.List(s.ctx, ports.AttemptFilter{})
		s.Require().NoError(err)
		s.Require().Len(out, 2)
		s.Equal(recent.ID, out[0].ID)
	})

	s.Run("status filter", func() {
		out, err := s.store.List(s.ctx, ports.AttemptFilter{Status: verification.StatusFailed})
		s.Require().NoError(err)
		s.Require().Len(out, 1)
		s.Equal(recent.ID, out[0].ID)
	})

	s.Run("time window", func() {
		out, err := s.store.List(s.ctx, ports.AttemptFilter{From: base.Add(24 * time.Hour)})
		s.Require().NoError(err)
		s.Require().Len(out, 1)
		s.Equal(recent.ID, out[0].ID)
	})

	s.Run("banker filter", func() {
		out, err := s.store.List(s.ctx, ports.AttemptFilter{BankerID: old.BankerID})
		s.Require().NoError(err)
		s.Require().Len(out, 1)
		s.Equal(old.ID, out[0].ID)
	})

	s.Run("limit", func() {
		out, err := s.store.List(s.ctx, ports.AttemptFilter{Limit: 1})
		s.Require().NoError(err)
		s.Len(out, 1)
	})
}

func (s *InMemorySuite) TestCloseScored() {
	s.Run("scored closes", func() {
		attempt := s.newAttempt(time.Now(), verification.StatusScored)
		s.Require().NoError(s.store.Save(s.ctx, attempt))

		s.Require().NoError(s.store.CloseScored(s.ctx, attempt.ID))

		closed, err := s.store.FindByID(s.ctx, attempt.ID)
		s.Require().NoError(err)
		s.Equal(verification.StatusClosed, closed.Status)
	})

	s.Run("failed refuses", func() {
		attempt := s.newAttempt(time.Now(), verification.StatusFailed)
		s.Require().NoError(s.store.Save(s.ctx, attempt))

		s.ErrorIs(s.store.CloseScored(s.ctx, attempt.ID), sentinel.ErrInvalidState)
	})

	s.Run("closed refuses again", func() {
		attempt := s.newAttempt(time.Now(), verification.StatusScored)
		s.Require().NoError(s.store.Save(s.ctx, attempt))

		s.Require().NoError(s.store.CloseScored(s.ctx, attempt.ID))
		s.ErrorIs(s.store.CloseScored(s.ctx, attempt.ID), sentinel.ErrInvalidState)
	})

	s.Run("missing attempt", func() {
		s.ErrorIs(s.store.CloseScored(s.ctx, id.NewAttemptID()), sentinel.ErrNotFound)
	})
}
