package service

//go:generate mockgen -destination=../mocks/mocks.go -package=mocks veriface/internal/verification/ports VisionClient,AttemptStore,AttemptCache,AuditPort

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veriface/internal/verification"
	"veriface/internal/verification/mocks"
	"veriface/internal/verification/ports"
	id "veriface/pkg/domain"
	dErrors "veriface/pkg/domain-errors"
	"veriface/pkg/platform/audit"
	"veriface/pkg/requestcontext"
)

// VerifySuite tests the scoring service against mocked vision, storage, and
// audit dependencies.
type VerifySuite struct {
	suite.Suite

	ctrl     *gomock.Controller
	vision   *mocks.MockVisionClient
	attempts *mocks.MockAttemptStore
	auditor  *mocks.MockAuditPort

	service *Service
	ctx     context.Context

	bankerID id.BankerID
	now      time.Time
}

func TestVerifySuite(t *testing.T) {
	suite.Run(t, new(VerifySuite))
}

func (s *VerifySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.vision = mocks.NewMockVisionClient(s.ctrl)
	s.attempts = mocks.NewMockAttemptStore(s.ctrl)
	s.auditor = mocks.NewMockAuditPort(s.ctrl)

	svc, err := New(verification.DefaultPolicy(), s.vision, s.attempts, s.auditor)
	s.Require().NoError(err)
	s.service = svc

	s.bankerID = id.NewBankerID()
	s.now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	ctx := requestcontext.WithBankerID(context.Background(), s.bankerID)
	ctx = requestcontext.WithTime(ctx, s.now)
	ctx = requestcontext.WithRequestID(ctx, "req-123")
	s.ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.1", "Firefox 142 on Linux")
}

func (s *VerifySuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *VerifySuite) validRequest() VerifyRequest {
	return VerifyRequest{
		LiveImage:      []byte("live-jpeg-bytes"),
		ReferenceImage: []byte("reference-jpeg-bytes"),
		SubjectRef:     "CUST-001",
	}
}

func probability(v float64) *float64 { return &v }

func (s *VerifySuite) TestVerifyScored() {
	signals := &ports.Signals{
		SimilarityScore:       0.92,
		ConfidenceProbability: probability(0.91),
		DetectedVariations:    []string{"glasses"},
		Quality:               map[string]float64{"sharpness": 0.8, "brightness": 0.7},
	}
	s.vision.EXPECT().
		Analyze(gomock.Any(), []byte("live-jpeg-bytes"), []byte("reference-jpeg-bytes"), "CUST-001").
		Return(signals, nil)

	var saved *verification.Attempt
	s.attempts.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *verification.Attempt) error {
			saved = a
			return nil
		})

	var event audit.Event
	s.auditor.EXPECT().
		Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			event = e
			return nil
		})

	attempt, err := s.service.Verify(s.ctx, s.validRequest())
	s.Require().NoError(err)
	s.Require().NotNil(attempt)
	s.Same(saved, attempt)

	s.Equal(verification.StatusScored, attempt.Status)
	s.Equal(verification.RecommendApprove, attempt.Recommendation)
	s.Equal(verification.ConfidenceHigh, attempt.ConfidenceLevel)
	s.Equal(s.bankerID, attempt.BankerID)
	s.Equal(s.now, attempt.CreatedAt)
	s.Equal([]verification.Variation{verification.VariationGlasses}, attempt.DetectedVariations)
	s.InDelta(0.35, attempt.EffectiveApprove, 1e-9)
	s.InDelta(0.05, attempt.RelaxationApplied, 1e-9)
	s.False(attempt.Anomaly)
	s.NotEmpty(attempt.Explanation)
	s.Contains(attempt.FeatureImportance, "similarity")

	s.Equal(audit.ActionVerificationScored, event.Action)
	s.Equal(attempt.ID, event.AttemptID)
	s.Equal(s.bankerID, event.BankerID)
	s.Equal("approve", event.Decision)
	s.Equal("req-123", event.RequestID)
	s.Equal("10.0.0.1", event.ClientIP)
}

func (s *VerifySuite) TestVerifyAnomalyFlag() {
	signals := &ports.Signals{
		SimilarityScore:    0.97,
		DetectedVariations: []string{"glasses", "low_light", "pose_difference", "hair_change"},
	}
	s.vision.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(signals, nil)
	s.attempts.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	attempt, err := s.service.Verify(s.ctx, s.validRequest())
	s.Require().NoError(err)

	s.True(attempt.Anomaly)
	// The flag informs, it never overrides the recommendation.
	s.Equal(verification.RecommendApprove, attempt.Recommendation)
	s.Equal(verification.ConfidenceNA, attempt.ConfidenceLevel)
	s.Contains(attempt.Explanation, "Anomaly")
}

func (s *VerifySuite) TestVerifyNoFace() {
	s.vision.EXPECT().
		Analyze(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, ports.ErrNoFace)

	var saved *verification.Attempt
	s.attempts.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *verification.Attempt) error {
			saved = a
			return nil
		})

	var event audit.Event
	s.auditor.EXPECT().
		Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			event = e
			return nil
		})

	attempt, err := s.service.Verify(s.ctx, s.validRequest())
	s.Require().NoError(err, "a failed attempt is a result, not an error")
	s.Require().NotNil(attempt)
	s.Same(saved, attempt)

	s.Equal(verification.StatusFailed, attempt.Status)
	s.Equal(verification.FailureNoFace, attempt.FailureReason)
	s.Equal("no face detected", attempt.Explanation)
	s.Empty(attempt.Recommendation)

	s.Equal(audit.ActionVerificationFailed, event.Action)
	s.Equal("no face detected", event.Reason)
}

func (s *VerifySuite) TestVerifyTimeout() {
	s.vision.EXPECT().
		Analyze(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, context.DeadlineExceeded)
	s.attempts.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	attempt, err := s.service.Verify(s.ctx, s.validRequest())
	s.Require().NoError(err)
	s.Equal(verification.StatusFailed, attempt.Status)
	s.Equal(verification.FailureTimeout, attempt.FailureReason)
}

func (s *VerifySuite) TestVerifyRejectsOutOfRangeSignals() {
	s.vision.EXPECT().
		Analyze(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&ports.Signals{SimilarityScore: 1.2}, nil)
	s.attempts.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	attempt, err := s.service.Verify(s.ctx, s.validRequest())
	s.Require().NoError(err)
	s.Equal(verification.StatusFailed, attempt.Status)
	s.Equal(verification.FailureProcessing, attempt.FailureReason)
}

func (s *VerifySuite) TestVerifyValidation() {
	s.Run("missing live image", func() {
		req := s.validRequest()
		req.LiveImage = nil

		_, err := s.service.Verify(s.ctx, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("subject ref alone satisfies the reference requirement", func() {
		req := s.validRequest()
		req.ReferenceImage = nil

		s.vision.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any(), "CUST-001").
			Return(&ports.Signals{SimilarityScore: 0.5}, nil)
		s.attempts.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		_, err := s.service.Verify(s.ctx, req)
		s.NoError(err)
	})

	s.Run("neither reference image nor subject ref", func() {
		req := s.validRequest()
		req.ReferenceImage = nil
		req.SubjectRef = ""

		_, err := s.service.Verify(s.ctx, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *VerifySuite) TestVerifyStorageFailure() {
	s.vision.EXPECT().
		Analyze(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&ports.Signals{SimilarityScore: 0.5}, nil)
	s.attempts.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	_, err := s.service.Verify(s.ctx, s.validRequest())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStorage))
}

func (s *VerifySuite) TestVerifyAuditFailureSurfaces() {
	s.vision.EXPECT().
		Analyze(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&ports.Signals{SimilarityScore: 0.5}, nil)
	s.attempts.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("sink down"))

	_, err := s.service.Verify(s.ctx, s.validRequest())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStorage))
}

func (s *VerifySuite) TestGetAttemptCache() {
	cache := mocks.NewMockAttemptCache(s.ctrl)
	svc, err := New(verification.DefaultPolicy(), s.vision, s.attempts, s.auditor, WithCache(cache))
	s.Require().NoError(err)

	attemptID := id.NewAttemptID()
	cached := &verification.Attempt{ID: attemptID, Status: verification.StatusScored}

	s.Run("cache hit skips the store", func() {
		cache.EXPECT().Get(gomock.Any(), attemptID).Return(cached, true)

		got, err := svc.GetAttempt(s.ctx, attemptID)
		s.Require().NoError(err)
		s.Same(cached, got)
	})

	s.Run("cache miss reads through and fills", func() {
		cache.EXPECT().Get(gomock.Any(), attemptID).Return(nil, false)
		s.attempts.EXPECT().FindByID(gomock.Any(), attemptID).Return(cached, nil)
		cache.EXPECT().Set(gomock.Any(), cached)

		got, err := svc.GetAttempt(s.ctx, attemptID)
		s.Require().NoError(err)
		s.Same(cached, got)
	})
}

func (s *VerifySuite) TestListAttemptsLimits() {
	s.Run("zero limit defaults to 50", func() {
		s.attempts.EXPECT().
			List(gomock.Any(), ports.AttemptFilter{Limit: 50}).
			Return(nil, nil)
		_, err := s.service.ListAttempts(s.ctx, ports.AttemptFilter{})
		s.NoError(err)
	})

	s.Run("oversized limit capped at 200", func() {
		s.attempts.EXPECT().
			List(gomock.Any(), ports.AttemptFilter{Limit: 200}).
			Return(nil, nil)
		_, err := s.service.ListAttempts(s.ctx, ports.AttemptFilter{Limit: 1000})
		s.NoError(err)
	})
}
