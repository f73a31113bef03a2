package verification

// Variation is a detected capture condition reported by the vision subsystem.
// The vocabulary is closed: thresholds are exhaustively testable over it, and
// tags outside it are ignored rather than rejected so a newer detector can
// run against an older engine.
type Variation string

const (
	VariationGlasses          Variation = "glasses"
	VariationLowLight         Variation = "low_light"
	VariationPartialOcclusion Variation = "partial_occlusion"
	VariationMotionBlur       Variation = "motion_blur"
	VariationPoseDifference   Variation = "pose_difference"
	VariationAgingDifference  Variation = "aging_difference"
	VariationHairChange       Variation = "hair_change"
	VariationFacialMarks      Variation = "facial_marks"
)

// knownVariations fixes the canonical iteration order. Explanation output
// depends on this order being stable, so new entries go at the end.
var knownVariations = []Variation{
	VariationGlasses,
	VariationLowLight,
	VariationPartialOcclusion,
	VariationMotionBlur,
	VariationPoseDifference,
	VariationAgingDifference,
	VariationHairChange,
	VariationFacialMarks,
}

var knownVariationSet = func() map[Variation]bool {
	m := make(map[Variation]bool, len(knownVariations))
	for _, v := range knownVariations {
		m[v] = true
	}
	return m
}()

// Known reports whether the variation is part of the closed vocabulary.
func (v Variation) Known() bool {
	return knownVariationSet[v]
}

// NormalizeVariations filters raw detector tags down to the known vocabulary,
// deduplicated, in canonical order. Unknown tags are dropped silently.
func NormalizeVariations(raw []string) []Variation {
	present := make(map[Variation]bool, len(raw))
	for _, tag := range raw {
		v := Variation(tag)
		if v.Known() {
			present[v] = true
		}
	}
	out := make([]Variation, 0, len(present))
	for _, v := range knownVariations {
		if present[v] {
			out = append(out, v)
		}
	}
	return out
}

// label is the human-readable form used in explanations.
func (v Variation) label() string {
	switch v {
	case VariationGlasses:
		return "eyewear detected"
	case VariationLowLight:
		return "low-light capture"
	case VariationPartialOcclusion:
		return "face partially occluded"
	case VariationMotionBlur:
		return "motion blur"
	case VariationPoseDifference:
		return "pose differs from reference"
	case VariationAgingDifference:
		return "age-related appearance change"
	case VariationHairChange:
		return "hairstyle change"
	case VariationFacialMarks:
		return "facial marks differ"
	default:
		return string(v)
	}
}
