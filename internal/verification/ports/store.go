package ports

import (
	"context"
	"time"

	"veriface/internal/verification"
	id "veriface/pkg/domain"
)

// AttemptFilter narrows attempt queries. Zero values mean "no constraint".
type AttemptFilter struct {
	From           time.Time
	To             time.Time
	Recommendation verification.Recommendation
	Status         verification.Status
	BankerID       id.BankerID
	Limit          int
}

// AttemptStore persists verification attempts. Attempts are immutable after
// Save except for the CLOSED transition, which the decision store applies
// atomically during finalize.
type AttemptStore interface {
	Save(ctx context.Context, attempt *verification.Attempt) error
	FindByID(ctx context.Context, attemptID id.AttemptID) (*verification.Attempt, error)
	List(ctx context.Context, filter AttemptFilter) ([]*verification.Attempt, error)
}

// AttemptCache is the optional hot-path cache in front of FindByID lookups.
// Implementations are best effort: a cache failure never fails the request.
type AttemptCache interface {
	Get(ctx context.Context, attemptID id.AttemptID) (*verification.Attempt, bool)
	Set(ctx context.Context, attempt *verification.Attempt)
	Invalidate(ctx context.Context, attemptID id.AttemptID)
}
