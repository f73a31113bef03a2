// Package decision provides DecisionStore implementations. Both honor the
// write-once contract: one decision per attempt, attempt closed in the same
// atomic step.
package decision

import (
	"context"
	"sort"
	"sync"

	"veriface/internal/workflow"
	"veriface/internal/workflow/ports"
	id "veriface/pkg/domain"
	"veriface/pkg/platform/sentinel"
)

// AttemptCloser applies the SCORED -> CLOSED transition on the attempt side.
// The in-memory attempt store satisfies it.
type AttemptCloser interface {
	CloseScored(ctx context.Context, attemptID id.AttemptID) error
}

// InMemory serializes all finalizations behind one mutex, so concurrent
// Finalize calls for the same attempt see exactly one winner.
type InMemory struct {
	mu        sync.RWMutex
	decisions map[id.AttemptID]*workflow.Decision
	attempts  AttemptCloser
}

func NewInMemory(attempts AttemptCloser) *InMemory {
	return &InMemory{
		decisions: make(map[id.AttemptID]*workflow.Decision),
		attempts:  attempts,
	}
}

func (s *InMemory) Finalize(ctx context.Context, decision *workflow.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.decisions[decision.ID]; taken {
		return sentinel.ErrAlreadyFinalized
	}
	// Closing the attempt first keeps the two maps consistent: on any error
	// nothing has been written here.
	if err := s.attempts.CloseScored(ctx, decision.ID); err != nil {
		return err
	}
	copied := *decision
	s.decisions[decision.ID] = &copied
	return nil
}

func (s *InMemory) FindByID(_ context.Context, decisionID id.AttemptID) (*workflow.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if decision, ok := s.decisions[decisionID]; ok {
		copied := *decision
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context, filter ports.DecisionFilter) ([]*workflow.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*workflow.Decision
	for _, decision := range s.decisions {
		if !matches(decision, filter) {
			continue
		}
		copied := *decision
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DecidedAt.After(out[j].DecidedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matches(d *workflow.Decision, f ports.DecisionFilter) bool {
	if !f.From.IsZero() && d.DecidedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && d.DecidedAt.After(f.To) {
		return false
	}
	if f.FinalAction != "" && d.FinalAction != f.FinalAction {
		return false
	}
	if !f.DecidedBy.IsNil() && d.DecidedBy != f.DecidedBy {
		return false
	}
	return true
}
