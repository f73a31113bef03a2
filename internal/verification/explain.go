package verification

import (
	"math"
	"strconv"
	"strings"
)

// Explain renders the human-readable explanation and per-factor importance
// weights for a scored attempt. It is pure and deterministic: identical
// inputs produce byte-identical text, so re-rendering a stored attempt later
// reproduces exactly what the banker saw. That determinism is what makes the
// audit trail evidence rather than a cache.
//
// Factors with no evidence are omitted from the importance map, not zeroed.
func (p Policy) Explain(
	score float64,
	variations []Variation,
	t Thresholds,
	rec Recommendation,
	anomaly bool,
) (string, map[string]float64) {
	importance := map[string]float64{
		"similarity": similarityWeight(rec),
	}
	for _, v := range variations {
		if v.Known() {
			importance[string(v)] = capWeight(0.10 + p.Relaxations[v])
		}
	}
	for _, metric := range t.LowQualityMetrics {
		importance[metric] = 0.20
	}

	var b strings.Builder
	b.WriteString(headline(score, rec))

	if t.RelaxationApplied > 0 && len(variations) > 0 {
		b.WriteString(" Threshold relaxed by ")
		b.WriteString(strconv.FormatFloat(t.RelaxationApplied, 'f', 2, 64))
		b.WriteString(" for: ")
		labels := make([]string, 0, len(variations))
		for _, v := range variations {
			labels = append(labels, v.label())
		}
		b.WriteString(strings.Join(labels, ", "))
		b.WriteString(".")
	}

	if len(t.LowQualityMetrics) > 0 {
		b.WriteString(" Capture quality below floor (")
		b.WriteString(strings.Join(t.LowQualityMetrics, ", "))
		b.WriteString("); auto-approval withheld pending better capture.")
	}

	if anomaly {
		b.WriteString(" Anomaly: near-perfect similarity under multiple variations; verify the capture is live.")
	}

	return b.String(), importance
}

// FailureExplanation is the canned text recorded on FAILED attempts. Kept as
// a function so failed attempts get the same deterministic re-render
// guarantee as scored ones.
func FailureExplanation(reason FailureReason) string {
	return string(reason)
}

func headline(score float64, rec Recommendation) string {
	pct := strconv.Itoa(int(math.Round(score * 100)))
	switch rec {
	case RecommendApprove:
		return "Strong facial match (" + pct + "% similarity); live capture matches the identity document."
	case RecommendManualReview:
		return "Moderate facial match (" + pct + "% similarity); manual review required."
	default:
		return "Low facial match (" + pct + "% similarity); identity could not be confirmed."
	}
}

func similarityWeight(rec Recommendation) float64 {
	if rec == RecommendApprove {
		return 0.80
	}
	return 0.70
}

func capWeight(w float64) float64 {
	if w > 1 {
		return 1
	}
	return w
}
