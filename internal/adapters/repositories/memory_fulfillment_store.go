package repositories

import (
	"context"
	"sort"
	"sync"

	"order-fulfillment-service/internal/domain"
	"order-fulfillment-service/internal/ports"
)

// MemoryFulfillmentStore keeps states in a map. It backs tests and demo runs
// without a database; it does not survive restarts and is not a substitute
// for the SQL stores in production.
type MemoryFulfillmentStore struct {
	mu     sync.Mutex
	states map[string]*domain.FulfillmentState

	// FailSaves makes Save return ErrPersistence, for testing the
	// persistence-failure path.
	FailSaves bool
}

func NewMemoryFulfillmentStore() *MemoryFulfillmentStore {
	return &MemoryFulfillmentStore{states: make(map[string]*domain.FulfillmentState)}
}

var _ ports.FulfillmentStore = (*MemoryFulfillmentStore)(nil)

func (s *MemoryFulfillmentStore) Load(ctx context.Context, orderKey string) (*domain.FulfillmentState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[orderKey]
	if !ok {
		return nil, false, nil
	}
	return state.Clone(), true, nil
}

func (s *MemoryFulfillmentStore) Save(ctx context.Context, state *domain.FulfillmentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSaves {
		return domain.ErrPersistence
	}

	s.states[state.OrderKey] = state.Clone()
	return nil
}

func (s *MemoryFulfillmentStore) List(ctx context.Context) ([]*domain.FulfillmentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.states))
	for k := range s.states {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*domain.FulfillmentState, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.states[k].Clone())
	}
	return out, nil
}
