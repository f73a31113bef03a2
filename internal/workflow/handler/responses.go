package handler

import (
	"time"

	vhandler "veriface/internal/verification/handler"
	"veriface/internal/workflow"
	"veriface/internal/workflow/service"
)

// DecisionResponse is the HTTP representation of a finalized decision. The
// decision ID equals the attempt ID it finalized.
type DecisionResponse struct {
	DecisionID  string    `json:"decision_id"`
	FinalAction string    `json:"final_action"`
	Reasoning   string    `json:"reasoning,omitempty"`
	DecidedAt   time.Time `json:"decided_at"`
	DecidedBy   string    `json:"decided_by"`
}

// ListDecisionsResponse wraps the decision collection.
type ListDecisionsResponse struct {
	Decisions []*DecisionResponse `json:"decisions"`
	Count     int                 `json:"count"`
}

// CaseResponse joins an attempt with its decision. Decision is null until a
// banker finalizes the attempt.
type CaseResponse struct {
	Attempt  *vhandler.AttemptResponse `json:"attempt"`
	Decision *DecisionResponse         `json:"decision,omitempty"`
}

// FromDecision converts a domain decision to its HTTP representation.
func FromDecision(d *workflow.Decision) *DecisionResponse {
	return &DecisionResponse{
		DecisionID:  d.ID.String(),
		FinalAction: d.FinalAction.String(),
		Reasoning:   d.Reasoning,
		DecidedAt:   d.DecidedAt,
		DecidedBy:   d.DecidedBy.String(),
	}
}

// FromDecisions converts a list of decisions.
func FromDecisions(decisions []*workflow.Decision) *ListDecisionsResponse {
	out := make([]*DecisionResponse, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, FromDecision(d))
	}
	return &ListDecisionsResponse{Decisions: out, Count: len(out)}
}

// FromCase converts a case to its HTTP representation.
func FromCase(c *service.Case) *CaseResponse {
	resp := &CaseResponse{Attempt: vhandler.FromAttempt(c.Attempt)}
	if c.Decision != nil {
		resp.Decision = FromDecision(c.Decision)
	}
	return resp
}
