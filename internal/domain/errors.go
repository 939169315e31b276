package domain

import "errors"

// Recoverable error classes surfaced to callers as typed results. Only
// storage-engine failures (ErrPersistence) abort the individual request.
var (
	// No fulfillment state and no order content for the identity.
	ErrOrderNotFound = errors.New("order not found")

	// The named box was never created for this order.
	ErrBoxNotFound = errors.New("box not found")

	// Scanned or entered article code matches no line of the order.
	ErrArticleNotInOrder = errors.New("article not in order")

	// The action's required source status does not match the current one.
	ErrInvalidTransition = errors.New("invalid transition")

	// ERP, artifact or notification collaborator failed or timed out.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// The fulfillment store failed to durably commit a mutation.
	ErrPersistence = errors.New("persistence failure")
)
