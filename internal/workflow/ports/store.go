package ports

import (
	"context"
	"time"

	"veriface/internal/workflow"
	id "veriface/pkg/domain"
)

// DecisionFilter narrows decision queries. Zero values mean "no constraint".
type DecisionFilter struct {
	From        time.Time
	To          time.Time
	FinalAction workflow.FinalAction
	DecidedBy   id.BankerID
	Limit       int
}

// DecisionStore persists banker decisions. Finalize is the write-once CAS:
// it must transition the attempt SCORED -> CLOSED and create the decision
// row atomically, returning
//   - sentinel.ErrNotFound when the attempt does not exist,
//   - sentinel.ErrAlreadyFinalized when the decision slot is taken,
//   - sentinel.ErrInvalidState when the attempt is not in SCORED,
//
// and must leave no partial state behind in any error case. Implementations
// must serialize concurrent Finalize calls per attempt ID so exactly one
// caller succeeds.
type DecisionStore interface {
	Finalize(ctx context.Context, decision *workflow.Decision) error
	FindByID(ctx context.Context, decisionID id.AttemptID) (*workflow.Decision, error)
	List(ctx context.Context, filter DecisionFilter) ([]*workflow.Decision, error)
}
