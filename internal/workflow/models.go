// Package workflow implements the audit state machine that attaches a
// banker's final action to a scored attempt. Scoring recommends; the banker
// disposes, exactly once.
package workflow

import (
	"time"

	id "veriface/pkg/domain"
	dErrors "veriface/pkg/domain-errors"
)

// FinalAction is the banker's disposition of an attempt. Closed enum:
// construct via ParseFinalAction at trust boundaries.
type FinalAction string

const (
	ActionBankerApprove    FinalAction = "BANKER_APPROVE"
	ActionBankerReject     FinalAction = "BANKER_REJECT"
	ActionRequestRecapture FinalAction = "REQUEST_RECAPTURE"
)

var validFinalActions = map[FinalAction]bool{
	ActionBankerApprove:    true,
	ActionBankerReject:     true,
	ActionRequestRecapture: true,
}

// ParseFinalAction validates external input into a FinalAction.
// Errors: CodeInvalidInput when the value is empty or unsupported.
func ParseFinalAction(s string) (FinalAction, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "action cannot be empty")
	}
	a := FinalAction(s)
	if !validFinalActions[a] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid action: "+s)
	}
	return a, nil
}

func (a FinalAction) String() string { return string(a) }

// Decision is the banker's final, write-once disposition of an attempt.
// DecisionID equals the attempt ID: one decision slot per attempt.
type Decision struct {
	ID          id.AttemptID
	FinalAction FinalAction
	// Reasoning is free text supplied by the banker; may be empty.
	Reasoning string
	DecidedAt time.Time
	DecidedBy id.BankerID

	// Request metadata captured for the audit trail.
	ClientIP   string
	DeviceInfo string
}
