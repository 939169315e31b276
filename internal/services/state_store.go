package services

import (
	"context"
	"sync"
	"time"

	"order-fulfillment-service/internal/domain"
	"order-fulfillment-service/internal/ports"
)

// StateStore serializes access to fulfillment states. Each order has its own
// lock, so pickers on different orders never contend; every mutation is a
// read-modify-write under the order's lock, persisted before the lock is
// released. A failed persist discards the mutation.
type StateStore struct {
	store ports.FulfillmentStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStateStore(store ports.FulfillmentStore) *StateStore {
	return &StateStore{store: store, locks: make(map[string]*sync.Mutex)}
}

func (s *StateStore) lockFor(orderKey string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[orderKey]
	if !ok {
		l = &sync.Mutex{}
		s.locks[orderKey] = l
	}
	return l
}

// loadOrCreate returns the persisted state for the order, creating and
// persisting the default to-do state on first access. Caller must hold the
// order lock.
func (s *StateStore) loadOrCreate(ctx context.Context, orderKey string) (*domain.FulfillmentState, error) {
	state, found, err := s.store.Load(ctx, orderKey)
	if err != nil {
		return nil, err
	}
	if found {
		return state, nil
	}

	state = domain.NewFulfillmentState(orderKey)
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Get returns the current state of an order, materializing the default if
// the order has never been touched.
func (s *StateStore) Get(ctx context.Context, orderKey string) (*domain.FulfillmentState, error) {
	l := s.lockFor(orderKey)
	l.Lock()
	defer l.Unlock()

	return s.loadOrCreate(ctx, orderKey)
}

// List returns all persisted states.
func (s *StateStore) List(ctx context.Context) ([]*domain.FulfillmentState, error) {
	return s.store.List(ctx)
}

// Mutate applies fn to a private copy of the order's state under the order
// lock, persists the result and returns it. If fn or the persist fails, the
// stored state is unchanged.
func (s *StateStore) Mutate(ctx context.Context, orderKey string, fn func(*domain.FulfillmentState) error) (*domain.FulfillmentState, error) {
	l := s.lockFor(orderKey)
	l.Lock()
	defer l.Unlock()

	current, err := s.loadOrCreate(ctx, orderKey)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}
