package verification

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// ExplainSuite tests the explanation generator. Text output must be
// byte-deterministic: stored attempts are re-rendered for auditors and must
// match what the banker saw.
type ExplainSuite struct {
	suite.Suite

	policy Policy
}

func TestExplainSuite(t *testing.T) {
	suite.Run(t, new(ExplainSuite))
}

func (s *ExplainSuite) SetupTest() {
	s.policy = DefaultPolicy()
}

func (s *ExplainSuite) TestHeadlines() {
	base := s.policy.Effective(nil, nil)

	s.Run("approve headline", func() {
		text, _ := s.policy.Explain(0.92, nil, base, RecommendApprove, false)
		s.Equal("Strong facial match (92% similarity); live capture matches the identity document.", text)
	})

	s.Run("manual review headline", func() {
		text, _ := s.policy.Explain(0.35, nil, base, RecommendManualReview, false)
		s.Equal("Moderate facial match (35% similarity); manual review required.", text)
	})

	s.Run("reject headline", func() {
		text, _ := s.policy.Explain(0.12, nil, base, RecommendReject, false)
		s.Equal("Low facial match (12% similarity); identity could not be confirmed.", text)
	})

	s.Run("percentage rounds to nearest integer", func() {
		text, _ := s.policy.Explain(0.876, nil, base, RecommendApprove, false)
		s.Contains(text, "(88% similarity)")
	})
}

func (s *ExplainSuite) TestRelaxationClause() {
	variations := []Variation{VariationGlasses, VariationLowLight}
	t := s.policy.Effective(variations, nil)

	text, _ := s.policy.Explain(0.36, variations, t, RecommendApprove, false)
	s.Contains(text, "Threshold relaxed by 0.08 for: eyewear detected, low-light capture.")
}

func (s *ExplainSuite) TestQualityClause() {
	quality := map[string]float64{"sharpness": 0.10}
	t := s.policy.Effective(nil, quality)

	text, _ := s.policy.Explain(0.42, nil, t, RecommendManualReview, false)
	s.Contains(text, "Capture quality below floor (sharpness)")
}

func (s *ExplainSuite) TestAnomalyClause() {
	variations := []Variation{VariationGlasses, VariationLowLight, VariationPoseDifference, VariationHairChange}
	t := s.policy.Effective(variations, nil)

	text, _ := s.policy.Explain(0.97, variations, t, RecommendApprove, true)
	s.Contains(text, "Anomaly: near-perfect similarity under multiple variations")
}

func (s *ExplainSuite) TestFeatureImportance() {
	s.Run("similarity weight depends on recommendation", func() {
		base := s.policy.Effective(nil, nil)
		_, approved := s.policy.Explain(0.92, nil, base, RecommendApprove, false)
		s.InDelta(0.80, approved["similarity"], 1e-9)

		_, reviewed := s.policy.Explain(0.35, nil, base, RecommendManualReview, false)
		s.InDelta(0.70, reviewed["similarity"], 1e-9)
	})

	s.Run("variations weighted by their relaxation delta", func() {
		variations := []Variation{VariationGlasses}
		t := s.policy.Effective(variations, nil)
		_, importance := s.policy.Explain(0.40, variations, t, RecommendApprove, false)
		s.InDelta(0.15, importance["glasses"], 1e-9)
	})

	s.Run("low quality metrics get a fixed weight", func() {
		quality := map[string]float64{"brightness": 0.05}
		t := s.policy.Effective(nil, quality)
		_, importance := s.policy.Explain(0.50, nil, t, RecommendApprove, false)
		s.InDelta(0.20, importance["brightness"], 1e-9)
	})

	s.Run("absent factors are omitted, not zeroed", func() {
		base := s.policy.Effective(nil, nil)
		_, importance := s.policy.Explain(0.92, nil, base, RecommendApprove, false)
		s.Len(importance, 1)
		s.NotContains(importance, "glasses")
	})
}

// TestDeterminism re-renders the same inputs and requires byte-identical
// output.
func (s *ExplainSuite) TestDeterminism() {
	variations := []Variation{VariationGlasses, VariationLowLight, VariationPoseDifference, VariationHairChange}
	quality := map[string]float64{"sharpness": 0.10, "brightness": 0.05}
	t := s.policy.Effective(variations, quality)

	first, firstImportance := s.policy.Explain(0.97, variations, t, RecommendApprove, true)
	for i := 0; i < 50; i++ {
		text, importance := s.policy.Explain(0.97, variations, t, RecommendApprove, true)
		s.Require().Equal(first, text)
		s.Require().Equal(firstImportance, importance)
	}
}

func (s *ExplainSuite) TestNormalizeVariations() {
	s.Run("unknown tags dropped", func() {
		out := NormalizeVariations([]string{"glasses", "sunburn"})
		s.Equal([]Variation{VariationGlasses}, out)
	})

	s.Run("duplicates collapse", func() {
		out := NormalizeVariations([]string{"glasses", "glasses"})
		s.Equal([]Variation{VariationGlasses}, out)
	})

	s.Run("canonical order independent of input order", func() {
		out := NormalizeVariations([]string{"hair_change", "glasses", "low_light"})
		s.Equal([]Variation{VariationGlasses, VariationLowLight, VariationHairChange}, out)
	})

	s.Run("empty input yields empty set", func() {
		s.Empty(NormalizeVariations(nil))
	})
}
