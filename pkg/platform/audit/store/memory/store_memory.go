package memory

import (
	"context"
	"sort"
	"sync"

	id "veriface/pkg/domain"
	audit "veriface/pkg/platform/audit"
)

// InMemoryStore keeps audit events in process memory. It favors clarity over
// performance and is the default when no database is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByBanker(_ context.Context, bankerID id.BankerID, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for _, e := range s.events {
		if e.BankerID == bankerID {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	return truncate(out, limit), nil
}

func (s *InMemoryStore) List(_ context.Context, filter audit.Filter) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for _, e := range s.events {
		if !filter.From.IsZero() && e.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Timestamp.After(filter.To) {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		out = append(out, e)
	}
	sortNewestFirst(out)
	return truncate(out, filter.Limit), nil
}

func sortNewestFirst(events []audit.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
}

func truncate(events []audit.Event, limit int) []audit.Event {
	if limit > 0 && len(events) > limit {
		return events[:limit]
	}
	return events
}
