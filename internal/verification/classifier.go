package verification

// Classify applies the effective cutoffs to a validated similarity score.
// This is pure domain logic - no I/O, no side effects.
//
// Monotonicity invariant: for fixed cutoffs, a higher score never produces a
// lower-ranked recommendation (reject < manual_review < approve).
func Classify(score float64, t Thresholds) Recommendation {
	switch {
	case score >= t.Approve:
		return RecommendApprove
	case score <= t.Reject:
		return RecommendReject
	default:
		return RecommendManualReview
	}
}

// BucketConfidence maps the externally produced confidence probability onto
// the fixed, non-overlapping levels. A nil probability (the vision subsystem
// did not report one) maps to N/A rather than LOW: absence of evidence is
// not low confidence.
func (p Policy) BucketConfidence(probability *float64) ConfidenceLevel {
	if probability == nil {
		return ConfidenceNA
	}
	switch {
	case *probability >= p.ConfidenceHigh:
		return ConfidenceHigh
	case *probability >= p.ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// anomalyScoreFloor and anomalyVariationCount flag the suspicious signal
// combination of a near-perfect match under many simultaneous variations
// (a printed photo or mask can score this way).
const (
	anomalyScoreFloor     = 0.95
	anomalyVariationCount = 3
)

// DetectAnomaly reports whether the signal combination warrants an anomaly
// flag. The flag informs the banker and the audit trail; it never changes
// the recommendation on its own.
func DetectAnomaly(score float64, variations []Variation) bool {
	return score > anomalyScoreFloor && len(variations) > anomalyVariationCount
}
