//go:build integration

package attempt_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veriface/internal/verification"
	"veriface/internal/verification/store/attempt"
	id "veriface/pkg/domain"
	"veriface/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite

	redis *containers.RedisContainer
	cache *attempt.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = attempt.NewRedisCache(s.redis.Client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) sampleAttempt() *verification.Attempt {
	score := 0.82
	return &verification.Attempt{
		ID:                 id.NewAttemptID(),
		BankerID:           id.NewBankerID(),
		CreatedAt:          time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		SubjectRef:         "CUST-042",
		SimilarityScore:    score,
		DetectedVariations: []verification.Variation{verification.VariationGlasses},
		Recommendation:     verification.RecommendApprove,
		ConfidenceLevel:    verification.ConfidenceHigh,
		Explanation:        "Strong facial match (82% similarity); live capture matches the identity document.",
		EffectiveApprove:   0.35,
		EffectiveReject:    0.25,
		RelaxationApplied:  0.05,
		Status:             verification.StatusScored,
	}
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	want := s.sampleAttempt()

	s.cache.Set(ctx, want)

	got, ok := s.cache.Get(ctx, want.ID)
	s.Require().True(ok)
	s.Equal(want.ID, got.ID)
	s.Equal(want.SubjectRef, got.SubjectRef)
	s.Equal(want.SimilarityScore, got.SimilarityScore)
	s.Equal(want.DetectedVariations, got.DetectedVariations)
	s.Equal(want.Recommendation, got.Recommendation)
	s.Equal(want.Status, got.Status)
	s.True(want.CreatedAt.Equal(got.CreatedAt))
}

func (s *RedisCacheSuite) TestMiss() {
	_, ok := s.cache.Get(context.Background(), id.NewAttemptID())
	s.False(ok)
}

func (s *RedisCacheSuite) TestInvalidate() {
	ctx := context.Background()
	stored := s.sampleAttempt()
	s.cache.Set(ctx, stored)

	s.cache.Invalidate(ctx, stored.ID)

	_, ok := s.cache.Get(ctx, stored.ID)
	s.False(ok)
}

func (s *RedisCacheSuite) TestKeyNamespace() {
	ctx := context.Background()
	stored := s.sampleAttempt()
	s.cache.Set(ctx, stored)

	exists, err := s.redis.Client.Exists(ctx, "veriface:attempt:"+stored.ID.String()).Result()
	s.Require().NoError(err)
	s.Equal(int64(1), exists)
}

func (s *RedisCacheSuite) TestTTLApplied() {
	ctx := context.Background()
	stored := s.sampleAttempt()
	s.cache.Set(ctx, stored)

	ttl, err := s.redis.Client.TTL(ctx, "veriface:attempt:"+stored.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func (s *RedisCacheSuite) TestCorruptEntryTreatedAsMiss() {
	ctx := context.Background()
	attemptID := id.NewAttemptID()
	s.Require().NoError(s.redis.Client.Set(ctx, "veriface:attempt:"+attemptID.String(), "not json", time.Minute).Err())

	_, ok := s.cache.Get(ctx, attemptID)
	s.False(ok)
}
