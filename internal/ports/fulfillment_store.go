package ports

import (
	"context"

	"order-fulfillment-service/internal/domain"
)

// Port: durable storage for per-order fulfillment state. The store is the
// system of record for fulfillment progress (the order content cache is
// not); it must survive process restarts.
//
// Implementations persist the packing list and picked summary as structured
// JSON blobs keyed by the string-rendered order identity. They do not need
// to be concurrency-safe per key: all mutations go through the single-writer
// path in services.StateStore.
type FulfillmentStore interface {
	// Load returns the stored state, found=false when the key is unknown.
	Load(ctx context.Context, orderKey string) (state *domain.FulfillmentState, found bool, err error)

	// Save upserts the state for its order key.
	Save(ctx context.Context, state *domain.FulfillmentState) error

	// List returns all stored states, for reporting and tooling.
	List(ctx context.Context) ([]*domain.FulfillmentState, error)
}
