// Package attempt provides AttemptStore implementations. The in-memory store
// keeps the initial deployment lightweight and testable; postgres carries
// production load.
package attempt

import (
	"context"
	"sort"
	"sync"

	"veriface/internal/verification"
	"veriface/internal/verification/ports"
	id "veriface/pkg/domain"
	"veriface/pkg/platform/sentinel"
)

// InMemory stores attempts in process memory, guarded by a single RWMutex.
// It intentionally favors clarity over performance.
type InMemory struct {
	mu       sync.RWMutex
	attempts map[id.AttemptID]*verification.Attempt
}

func NewInMemory() *InMemory {
	return &InMemory{attempts: make(map[id.AttemptID]*verification.Attempt)}
}

func (s *InMemory) Save(_ context.Context, attempt *verification.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *attempt
	s.attempts[attempt.ID] = &copied
	return nil
}

func (s *InMemory) FindByID(_ context.Context, attemptID id.AttemptID) (*verification.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if attempt, ok := s.attempts[attemptID]; ok {
		copied := *attempt
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context, filter ports.AttemptFilter) ([]*verification.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*verification.Attempt
	for _, attempt := range s.attempts {
		if !matches(attempt, filter) {
			continue
		}
		copied := *attempt
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CloseScored transitions a SCORED attempt to CLOSED. Returns
// sentinel.ErrInvalidState when the attempt is not in SCORED, which the
// workflow translates into its conflict error. The memory decision store
// calls this under its own finalize lock.
func (s *InMemory) CloseScored(_ context.Context, attemptID id.AttemptID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if attempt.Status != verification.StatusScored {
		return sentinel.ErrInvalidState
	}
	attempt.Status = verification.StatusClosed
	return nil
}

func matches(a *verification.Attempt, f ports.AttemptFilter) bool {
	if !f.From.IsZero() && a.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && a.CreatedAt.After(f.To) {
		return false
	}
	if f.Recommendation != "" && a.Recommendation != f.Recommendation {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if !f.BankerID.IsNil() && a.BankerID != f.BankerID {
		return false
	}
	return true
}
