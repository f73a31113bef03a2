package ports

import (
	"context"
	"errors"
)

// Sentinel failures from the vision subsystem. The engine maps both to a
// FAILED attempt with a canned explanation; anything else from the client is
// treated as ErrProcessing.
var (
	ErrNoFace     = errors.New("no face detected")
	ErrProcessing = errors.New("vision processing error")
)

// Signals is the raw output of the external vision subsystem. The engine
// treats every field as untrusted and validates ranges before classifying.
type Signals struct {
	// SimilarityScore in [0,1].
	SimilarityScore float64
	// ConfidenceProbability in [0,1]; nil when the subsystem did not
	// produce one. Independent of SimilarityScore.
	ConfidenceProbability *float64
	// DetectedVariations are free-form detector tags; unknown tags are
	// ignored downstream.
	DetectedVariations []string
	// Quality maps metric names (sharpness, brightness, ...) to values.
	// May be partially populated.
	Quality map[string]float64
}

// VisionClient is the function-shaped dependency on the external vision
// subsystem. Implementations must honor ctx cancellation; the caller supplies
// the timeout.
type VisionClient interface {
	Analyze(ctx context.Context, liveImage, referenceImage []byte, subjectRef string) (*Signals, error)
}
