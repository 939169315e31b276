package ports

import (
	"context"

	"order-fulfillment-service/internal/domain"
)

// Snapshot handed to the artifact generator on approval: the fulfillment
// state being approved plus the read-only order content to render from.
type ArtifactRequest struct {
	State   *domain.FulfillmentState
	Content *domain.OrderContent
}

// Port: generates the packing-list document for an approved order and
// stores it durably. Consumed only by the Approve transition; approval is
// never recorded without the returned artifact reference.
type ArtifactGenerator interface {
	GenerateAndStore(ctx context.Context, req ArtifactRequest) (artifactRef string, err error)
}
