package verification

import (
	"fmt"
	"sort"
)

// Policy is the immutable threshold configuration for one deployment. It is
// built once at startup (or on an explicit reload) and passed into the
// classifier, never read from ambient state, so evaluations stay
// deterministic and unit-testable.
//
// Invariant: 0 <= BaseReject < BaseApprove <= 1 and every relaxation delta is
// non-negative. Validate enforces both; a Policy that fails Validate must not
// be used.
type Policy struct {
	// BaseApprove and BaseReject are the unadjusted cutoffs: score >=
	// BaseApprove recommends approve, score <= BaseReject recommends reject,
	// anything between lands in manual review.
	BaseApprove float64
	BaseReject  float64

	// Relaxations lower both cutoffs when the variation is present. Deltas
	// only ever make approval easier or leave it unchanged, never harder.
	Relaxations map[Variation]float64

	// MaxRelaxation caps the summed relaxation for any single attempt.
	MaxRelaxation float64

	// QualityFloors holds per-metric minimums. A reported metric below its
	// floor raises the approve cutoff by QualityRaise, widening the manual
	// review band upward: a blurry or underexposed capture is not
	// auto-approved on raw similarity alone. The reject cutoff never moves
	// on quality.
	QualityFloors map[string]float64
	QualityRaise  float64

	// Confidence bucket boundaries, non-overlapping: >= ConfidenceHigh is
	// HIGH, >= ConfidenceMedium is MEDIUM, below is LOW.
	ConfidenceHigh   float64
	ConfidenceMedium float64
}

// DefaultPolicy returns the cutoffs calibrated for the production face
// pipeline (Facenet512 embeddings under cosine similarity). All values are
// overridable through configuration.
func DefaultPolicy() Policy {
	return Policy{
		BaseApprove: 0.40,
		BaseReject:  0.30,
		Relaxations: map[Variation]float64{
			VariationGlasses:          0.05,
			VariationLowLight:         0.03,
			VariationPartialOcclusion: 0.05,
			VariationMotionBlur:       0.03,
			VariationPoseDifference:   0.03,
			VariationAgingDifference:  0.02,
			VariationHairChange:       0.02,
			VariationFacialMarks:      0.03,
		},
		MaxRelaxation: 0.10,
		QualityFloors: map[string]float64{
			"sharpness":  0.30,
			"brightness": 0.20,
		},
		QualityRaise:     0.05,
		ConfidenceHigh:   0.85,
		ConfidenceMedium: 0.60,
	}
}

// Validate checks the policy invariants.
func (p Policy) Validate() error {
	if p.BaseApprove <= 0 || p.BaseApprove > 1 {
		return fmt.Errorf("base approve cutoff %.3f outside (0,1]", p.BaseApprove)
	}
	if p.BaseReject < 0 || p.BaseReject >= p.BaseApprove {
		return fmt.Errorf("base reject cutoff %.3f must satisfy 0 <= reject < approve", p.BaseReject)
	}
	for v, delta := range p.Relaxations {
		if !v.Known() {
			return fmt.Errorf("relaxation configured for unknown variation %q", v)
		}
		if delta < 0 {
			return fmt.Errorf("relaxation for %q is negative; variations may never tighten thresholds", v)
		}
	}
	if p.MaxRelaxation < 0 {
		return fmt.Errorf("max relaxation %.3f is negative", p.MaxRelaxation)
	}
	for metric, floor := range p.QualityFloors {
		if floor < 0 || floor > 1 {
			return fmt.Errorf("quality floor for %q outside [0,1]", metric)
		}
	}
	if p.QualityRaise < 0 {
		return fmt.Errorf("quality raise %.3f is negative", p.QualityRaise)
	}
	if p.ConfidenceMedium < 0 || p.ConfidenceHigh <= p.ConfidenceMedium || p.ConfidenceHigh > 1 {
		return fmt.Errorf("confidence boundaries must satisfy 0 <= medium < high <= 1")
	}
	return nil
}

// Thresholds are the per-attempt effective cutoffs after variation
// relaxation and quality adjustment.
type Thresholds struct {
	Approve float64
	Reject  float64
	// RelaxationApplied is the capped sum of variation deltas, recorded on
	// the attempt for audit replay.
	RelaxationApplied float64
	// LowQualityMetrics lists reported metrics that fell below their floor,
	// sorted, for explanation and audit output.
	LowQualityMetrics []string
}

// Effective computes the cutoffs for one attempt. Variations drawn from the
// known vocabulary relax both cutoffs (never beyond MaxRelaxation in total);
// unrecognized tags have no effect. Quality metrics below their floor raise
// the approve cutoff only. Results are clamped so 0 <= Reject <= Approve <= 1.
func (p Policy) Effective(variations []Variation, quality map[string]float64) Thresholds {
	var relax float64
	for _, v := range variations {
		if delta, ok := p.Relaxations[v]; ok && v.Known() {
			relax += delta
		}
	}
	if relax > p.MaxRelaxation {
		relax = p.MaxRelaxation
	}

	approve := p.BaseApprove - relax
	reject := p.BaseReject - relax

	var low []string
	for metric, floor := range p.QualityFloors {
		value, reported := quality[metric]
		if reported && value < floor {
			low = append(low, metric)
		}
	}
	sort.Strings(low)
	approve += float64(len(low)) * p.QualityRaise

	approve = clamp01(approve)
	reject = clamp01(reject)
	if reject > approve {
		reject = approve
	}

	return Thresholds{
		Approve:           approve,
		Reject:            reject,
		RelaxationApplied: relax,
		LowQualityMetrics: low,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
