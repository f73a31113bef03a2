package handler

import (
	"time"

	"veriface/internal/verification"
)

// AttemptResponse is the HTTP representation of a verification attempt.
// DecisionID mirrors ID: it is the key clients pass back to POST /decide,
// since each attempt carries exactly one decision slot.
type AttemptResponse struct {
	ID         string    `json:"id"`
	DecisionID string    `json:"decision_id"`
	BankerID   string    `json:"banker_id"`
	CreatedAt  time.Time `json:"created_at"`
	SubjectRef string    `json:"subject_ref,omitempty"`

	SimilarityScore       float64            `json:"similarity_score"`
	ConfidenceProbability *float64           `json:"confidence_probability,omitempty"`
	DetectedVariations    []string           `json:"detected_variations"`
	Quality               map[string]float64 `json:"quality,omitempty"`

	Recommendation    string             `json:"recommendation,omitempty"`
	ConfidenceLevel   string             `json:"confidence_level,omitempty"`
	Explanation       string             `json:"explanation"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`

	EffectiveApprove  float64 `json:"effective_approve"`
	EffectiveReject   float64 `json:"effective_reject"`
	RelaxationApplied float64 `json:"relaxation_applied"`

	Anomaly bool `json:"anomaly"`

	Status        string `json:"status"`
	FailureReason string `json:"failure_reason,omitempty"`

	ProcessingTimeMS int64 `json:"processing_time_ms"`
}

// ListAttemptsResponse wraps the attempt collection.
type ListAttemptsResponse struct {
	Attempts []*AttemptResponse `json:"attempts"`
	Count    int                `json:"count"`
}

// FromAttempt converts a domain attempt to its HTTP representation.
func FromAttempt(a *verification.Attempt) *AttemptResponse {
	variations := make([]string, 0, len(a.DetectedVariations))
	for _, v := range a.DetectedVariations {
		variations = append(variations, string(v))
	}
	return &AttemptResponse{
		ID:                    a.ID.String(),
		DecisionID:            a.ID.String(),
		BankerID:              a.BankerID.String(),
		CreatedAt:             a.CreatedAt,
		SubjectRef:            a.SubjectRef,
		SimilarityScore:       a.SimilarityScore,
		ConfidenceProbability: a.ConfidenceProbability,
		DetectedVariations:    variations,
		Quality:               a.Quality,
		Recommendation:        string(a.Recommendation),
		ConfidenceLevel:       string(a.ConfidenceLevel),
		Explanation:           a.Explanation,
		FeatureImportance:     a.FeatureImportance,
		EffectiveApprove:      a.EffectiveApprove,
		EffectiveReject:       a.EffectiveReject,
		RelaxationApplied:     a.RelaxationApplied,
		Anomaly:               a.Anomaly,
		Status:                string(a.Status),
		FailureReason:         string(a.FailureReason),
		ProcessingTimeMS:      a.ProcessingTimeMS,
	}
}

// FromAttempts converts a list of attempts.
func FromAttempts(attempts []*verification.Attempt) *ListAttemptsResponse {
	out := make([]*AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, FromAttempt(a))
	}
	return &ListAttemptsResponse{Attempts: out, Count: len(out)}
}
