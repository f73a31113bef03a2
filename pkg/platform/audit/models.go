// Package audit defines the append-only audit trail contract. Every
// verification attempt and every banker action leaves an immutable record;
// compliance reporting reads them back by banker, attempt, or time range.
package audit

import (
	"context"
	"time"

	id "veriface/pkg/domain"
)

// Action enumerates the auditable actions of the verification engine.
type Action string

const (
	// Scoring path.
	ActionVerificationScored Action = "verification_scored"
	ActionVerificationFailed Action = "verification_failed"

	// Finalization path.
	ActionDecisionFinalized  Action = "decision_finalized"
	ActionRecaptureRequested Action = "recapture_requested"

	// Security-relevant refusals.
	ActionFinalizeConflict Action = "finalize_conflict"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Timestamp time.Time
	BankerID  id.BankerID
	AttemptID id.AttemptID
	Action    Action
	// Decision carries the engine recommendation or the banker's final
	// action, depending on the Action.
	Decision string
	Reason   string
	// SubjectRef is the customer reference under verification, when supplied.
	SubjectRef string
	RequestID  string
	ClientIP   string
	DeviceInfo string
}

// Filter narrows audit queries. Zero values mean "no constraint".
type Filter struct {
	From   time.Time
	To     time.Time
	Action Action
	Limit  int
}

// Store is the append/query contract the engine uses against durable
// storage. Implementations must treat Append as immutable: records are never
// updated or deleted by this interface.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByBanker(ctx context.Context, bankerID id.BankerID, limit int) ([]Event, error)
	List(ctx context.Context, filter Filter) ([]Event, error)
}

// Emitter stamps and forwards events to a Store. Services depend on this
// rather than on the store so tests can swap sinks easily.
type Emitter struct {
	store Store
}

func NewEmitter(store Store) *Emitter {
	return &Emitter{store: store}
}

// Emit appends the event, stamping the timestamp when the caller left it zero.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return e.store.Append(ctx, event)
}
