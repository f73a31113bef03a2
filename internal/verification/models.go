package verification

import (
	"time"

	id "veriface/pkg/domain"
	dErrors "veriface/pkg/domain-errors"
)

// Recommendation is the engine's automatic three-way classification. It is
// distinct from the banker's final action: the engine recommends, the banker
// disposes.
type Recommendation string

const (
	RecommendReject       Recommendation = "reject"
	RecommendManualReview Recommendation = "manual_review"
	RecommendApprove      Recommendation = "approve"
)

// Rank orders recommendations so monotonicity can be stated numerically:
// reject < manual_review < approve. A higher similarity score never yields a
// lower rank for fixed variations and quality.
func (r Recommendation) Rank() int {
	switch r {
	case RecommendReject:
		return 0
	case RecommendManualReview:
		return 1
	case RecommendApprove:
		return 2
	default:
		return -1
	}
}

// ConfidenceLevel buckets the externally produced confidence probability.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
	ConfidenceNA     ConfidenceLevel = "N/A"
)

// Status tracks the attempt through the decision workflow.
type Status string

const (
	// StatusScored: signals validated and classified; awaiting the banker.
	StatusScored Status = "SCORED"
	// StatusFailed: the vision subsystem produced no usable signal. Terminal;
	// a banker cannot finalize a failed attempt, the capture flow retries
	// with a new attempt.
	StatusFailed Status = "FAILED"
	// StatusClosed: a banker finalized the attempt. Terminal.
	StatusClosed Status = "CLOSED"
)

// FailureReason is the canned explanation recorded on FAILED attempts.
type FailureReason string

const (
	FailureNoFace     FailureReason = "no face detected"
	FailureProcessing FailureReason = "processing error"
	FailureTimeout    FailureReason = "verification timed out"
)

// Attempt is one verification call's inputs, computed signals, and
// recommendation. Immutable once persisted, except for the one-time CLOSED
// transition applied by the decision workflow.
type Attempt struct {
	ID        id.AttemptID
	BankerID  id.BankerID
	CreatedAt time.Time

	// SubjectRef optionally identifies the customer under verification.
	// Absent when only a reference image was supplied.
	SubjectRef string

	// Raw signals from the vision subsystem, validated to [0,1].
	SimilarityScore       float64
	ConfidenceProbability *float64
	DetectedVariations    []Variation
	Quality               map[string]float64

	// Computed outputs. Empty on FAILED attempts.
	Recommendation    Recommendation
	ConfidenceLevel   ConfidenceLevel
	Explanation       string
	FeatureImportance map[string]float64

	// Effective cutoffs recorded for audit replay.
	EffectiveApprove  float64
	EffectiveReject   float64
	RelaxationApplied float64

	// Anomaly flags a suspicious signal combination (near-perfect similarity
	// alongside many variations). It never changes the recommendation by
	// itself; it is surfaced for the banker and the audit trail.
	Anomaly bool

	Status        Status
	FailureReason FailureReason

	ProcessingTimeMS int64
}

// ErrNotFinalizable is returned when a banker tries to finalize a FAILED
// attempt. Derived from the processing failure that produced the attempt.
func (a *Attempt) ErrNotFinalizable() error {
	return dErrors.New(dErrors.CodeConflict,
		"attempt "+a.ID.String()+" failed scoring ("+string(a.FailureReason)+") and cannot be finalized; retry with a new capture")
}
