package verification

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// ClassifierSuite tests the three-way classification, confidence bucketing,
// and anomaly detection.
type ClassifierSuite struct {
	suite.Suite

	policy Policy
}

func TestClassifierSuite(t *testing.T) {
	suite.Run(t, new(ClassifierSuite))
}

func (s *ClassifierSuite) SetupTest() {
	s.policy = DefaultPolicy()
}

func (s *ClassifierSuite) TestClassify() {
	base := s.policy.Effective(nil, nil)

	s.Run("score at approve cutoff approves", func() {
		s.Equal(RecommendApprove, Classify(0.40, base))
	})

	s.Run("score above approve cutoff approves", func() {
		s.Equal(RecommendApprove, Classify(0.92, base))
	})

	s.Run("score at reject cutoff rejects", func() {
		s.Equal(RecommendReject, Classify(0.30, base))
	})

	s.Run("score between cutoffs goes to manual review", func() {
		s.Equal(RecommendManualReview, Classify(0.35, base))
	})

	s.Run("borderline score approves once variations relax the cutoff", func() {
		s.Equal(RecommendManualReview, Classify(0.37, base))

		relaxed := s.policy.Effective([]Variation{VariationGlasses}, nil)
		s.Equal(RecommendApprove, Classify(0.37, relaxed))
	})

	s.Run("low quality withholds auto approval on a passing score", func() {
		s.Equal(RecommendApprove, Classify(0.42, base))

		raised := s.policy.Effective(nil, map[string]float64{"sharpness": 0.10})
		s.Equal(RecommendManualReview, Classify(0.42, raised))
	})
}

// TestClassifyStricterPolicy runs the same scores against a deployment with
// tighter cutoffs. The classifier takes the policy as input, so the same code
// path must hold under any calibration.
func (s *ClassifierSuite) TestClassifyStricterPolicy() {
	strict := DefaultPolicy()
	strict.BaseApprove = 0.75
	strict.BaseReject = 0.55
	s.Require().NoError(strict.Validate())

	base := strict.Effective(nil, nil)

	s.Run("mid score rejects under the higher reject cutoff", func() {
		s.Equal(RecommendReject, Classify(0.45, base))
	})

	s.Run("strong score still approves", func() {
		s.Equal(RecommendApprove, Classify(0.85, base))
	})

	s.Run("glasses relaxation flips manual review to approve", func() {
		s.Equal(RecommendManualReview, Classify(0.70, base))

		relaxed := strict.Effective([]Variation{VariationGlasses}, nil)
		s.Equal(RecommendApprove, Classify(0.70, relaxed))
	})
}

// TestClassifyMonotonic sweeps scores under fixed thresholds and checks a
// higher score never produces a lower-ranked recommendation.
func (s *ClassifierSuite) TestClassifyMonotonic() {
	thresholds := s.policy.Effective(
		[]Variation{VariationGlasses, VariationLowLight},
		map[string]float64{"sharpness": 0.10},
	)

	prevRank := -1
	for i := 0; i <= 1000; i++ {
		score := float64(i) / 1000
		rank := Classify(score, thresholds).Rank()
		s.Require().GreaterOrEqual(rank, prevRank, "score %.3f regressed", score)
		prevRank = rank
	}
}

func (s *ClassifierSuite) TestBucketConfidence() {
	f := func(v float64) *float64 { return &v }

	s.Run("nil probability maps to N/A", func() {
		s.Equal(ConfidenceNA, s.policy.BucketConfidence(nil))
	})

	s.Run("boundaries are inclusive on the upper bucket", func() {
		s.Equal(ConfidenceHigh, s.policy.BucketConfidence(f(0.85)))
		s.Equal(ConfidenceMedium, s.policy.BucketConfidence(f(0.60)))
	})

	s.Run("below medium is LOW", func() {
		s.Equal(ConfidenceLow, s.policy.BucketConfidence(f(0.59)))
		s.Equal(ConfidenceLow, s.policy.BucketConfidence(f(0)))
	})

	s.Run("top of range is HIGH", func() {
		s.Equal(ConfidenceHigh, s.policy.BucketConfidence(f(1.0)))
	})
}

func (s *ClassifierSuite) TestDetectAnomaly() {
	many := []Variation{VariationGlasses, VariationLowLight, VariationPoseDifference, VariationHairChange}

	s.Run("near-perfect score with many variations flags", func() {
		s.True(DetectAnomaly(0.96, many))
	})

	s.Run("score at the floor does not flag", func() {
		s.False(DetectAnomaly(0.95, many))
	})

	s.Run("exactly the variation count does not flag", func() {
		s.False(DetectAnomaly(0.96, many[:3]))
	})

	s.Run("high score alone does not flag", func() {
		s.False(DetectAnomaly(0.99, nil))
	})
}
