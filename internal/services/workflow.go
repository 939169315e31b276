package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"order-fulfillment-service/internal/domain"
	"order-fulfillment-service/internal/platform/obs"
	"order-fulfillment-service/internal/ports"
)

// TransitionParams carries the optional inputs of a transition request.
type TransitionParams struct {
	// DeclaredBoxCount accompanies complete_picking: the operator's count of
	// physical boxes. Non-numeric or negative input falls back to zero.
	DeclaredBoxCount string
}

// Workflow drives the fulfillment state machine. Legal edges:
//
//	todo    -> picking  (start_picking, also review -> picking as a restart)
//	picking -> review   (complete_picking)
//	review  -> approved (approve)
//	review  -> picking  (reject)
//
// Everything else is an invalid transition.
type Workflow struct {
	states    *StateStore
	content   *ContentCache
	artifacts ports.ArtifactGenerator
	notifier  ports.Notifier
}

func NewWorkflow(states *StateStore, content *ContentCache, artifacts ports.ArtifactGenerator, notifier ports.Notifier) *Workflow {
	return &Workflow{states: states, content: content, artifacts: artifacts, notifier: notifier}
}

func parseDeclaredBoxCount(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func invalidTransition(action domain.Action, from domain.Status) error {
	return fmt.Errorf("action %s from status %s: %w", action, from, domain.ErrInvalidTransition)
}

// Apply executes one transition on the order and returns the resulting
// state.
func (w *Workflow) Apply(ctx context.Context, orderKey string, action domain.Action, params TransitionParams) (_ *domain.FulfillmentState, err error) {
	defer obs.Time(ctx, "workflow.Apply")(&err)

	switch action {
	case domain.ActionStartPicking:
		return w.startPicking(ctx, orderKey)
	case domain.ActionCompletePicking:
		return w.completePicking(ctx, orderKey, parseDeclaredBoxCount(params.DeclaredBoxCount))
	case domain.ActionReject:
		return w.reject(ctx, orderKey)
	case domain.ActionApprove:
		return w.approve(ctx, orderKey)
	}
	return nil, fmt.Errorf("action %q: %w", action, domain.ErrInvalidTransition)
}

// startPicking opens a picking pass. Starting over from review discards the
// previous pass's boxes; a reject keeps them, so the restart edge is the
// only place packing progress is cleared.
func (w *Workflow) startPicking(ctx context.Context, orderKey string) (*domain.FulfillmentState, error) {
	return w.states.Mutate(ctx, orderKey, func(s *domain.FulfillmentState) error {
		if s.Status != domain.StatusToDo && s.Status != domain.StatusReview {
			return invalidTransition(domain.ActionStartPicking, s.Status)
		}
		s.Status = domain.StatusPicking
		s.ResetPacking()
		return nil
	})
}

func (w *Workflow) completePicking(ctx context.Context, orderKey string, declaredBoxCount int) (*domain.FulfillmentState, error) {
	return w.states.Mutate(ctx, orderKey, func(s *domain.FulfillmentState) error {
		if s.Status != domain.StatusPicking {
			return invalidTransition(domain.ActionCompletePicking, s.Status)
		}
		s.Status = domain.StatusReview
		s.DeclaredBoxCount = declaredBoxCount
		return nil
	})
}

// reject sends a reviewed order back to picking, preserving the packing
// list so the picker can correct it rather than redo it.
func (w *Workflow) reject(ctx context.Context, orderKey string) (*domain.FulfillmentState, error) {
	return w.states.Mutate(ctx, orderKey, func(s *domain.FulfillmentState) error {
		if s.Status != domain.StatusReview {
			return invalidTransition(domain.ActionReject, s.Status)
		}
		s.Status = domain.StatusPicking
		return nil
	})
}

// approve generates the packing-list artifact and commits the approved
// status only after generation succeeds. Generation runs outside the order
// lock (it can be slow); the commit re-checks the status, so a concurrent
// transition during generation aborts the approval instead of being
// overwritten. On any failure the order stays in review.
func (w *Workflow) approve(ctx context.Context, orderKey string) (*domain.FulfillmentState, error) {
	state, err := w.states.Get(ctx, orderKey)
	if err != nil {
		return nil, err
	}
	if state.Status != domain.StatusReview {
		return nil, invalidTransition(domain.ActionApprove, state.Status)
	}

	content, err := w.content.GetOrder(ctx, orderKey)
	if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
		return nil, err
	}

	ref, err := w.artifacts.GenerateAndStore(ctx, ports.ArtifactRequest{State: state, Content: content})
	if err != nil {
		return nil, fmt.Errorf("approve %q: generate artifact: %w", orderKey, err)
	}

	updated, err := w.states.Mutate(ctx, orderKey, func(s *domain.FulfillmentState) error {
		if s.Status != domain.StatusReview {
			return invalidTransition(domain.ActionApprove, s.Status)
		}
		s.Status = domain.StatusApproved
		s.ArtifactRef = ref
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit, best-effort. A notification failure never rolls back an
	// approval.
	if w.notifier != nil {
		go func(key, ref string) {
			if err := w.notifier.Notify("logistics", "Order approved", fmt.Sprintf("order %s approved, packing list %s", key, ref)); err != nil {
				log.Printf("workflow: notify failed order=%s err=%v", key, err)
			}
		}(orderKey, ref)
	}

	return updated, nil
}
