package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"veriface/internal/workflow"
	"veriface/internal/workflow/ports"
	id "veriface/pkg/domain"
	dErrors "veriface/pkg/domain-errors"
)

const maxReasoningLength = 2000

// DecideRequest is the HTTP request body for POST /decide. The decision ID is
// the attempt ID: each attempt carries exactly one decision slot.
type DecideRequest struct {
	DecisionID string `json:"decision_id"`
	Action     string `json:"action"`
	Reasoning  string `json:"reasoning"`

	// Parsed values (populated by Validate)
	parsedAttemptID id.AttemptID
	parsedAction    workflow.FinalAction
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *DecideRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.DecisionID = strings.TrimSpace(r.DecisionID)
	if r.DecisionID == "" {
		return dErrors.New(dErrors.CodeValidation, "decision_id is required")
	}
	attemptID, err := id.ParseAttemptID(r.DecisionID)
	if err != nil {
		return err
	}
	r.parsedAttemptID = attemptID

	action, err := workflow.ParseFinalAction(strings.TrimSpace(r.Action))
	if err != nil {
		return err
	}
	r.parsedAction = action

	r.Reasoning = strings.TrimSpace(r.Reasoning)
	if len(r.Reasoning) > maxReasoningLength {
		return dErrors.New(dErrors.CodeValidation, "reasoning must be at most 2000 characters")
	}
	// Rejections must be explainable to the customer and the auditor.
	if action == workflow.ActionBankerReject && r.Reasoning == "" {
		return dErrors.New(dErrors.CodeValidation, "reasoning is required when rejecting")
	}

	return nil
}

// ParsedAttemptID returns the validated attempt ID.
func (r *DecideRequest) ParsedAttemptID() id.AttemptID {
	return r.parsedAttemptID
}

// ParsedAction returns the validated final action.
func (r *DecideRequest) ParsedAction() workflow.FinalAction {
	return r.parsedAction
}

// parseDecisionFilter reads the list query parameters.
func parseDecisionFilter(r *http.Request) (ports.DecisionFilter, error) {
	q := r.URL.Query()
	var filter ports.DecisionFilter

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeValidation, "from must be RFC3339")
		}
		filter.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeValidation, "to must be RFC3339")
		}
		filter.To = t
	}
	if raw := q.Get("action"); raw != "" {
		action, err := workflow.ParseFinalAction(raw)
		if err != nil {
			return filter, err
		}
		filter.FinalAction = action
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}
