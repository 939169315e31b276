package domain

import (
	"fmt"
	"time"
)

// Fulfillment status lifecycle: todo -> picking -> review -> approved, with
// review -> picking as the rejection edge.
type Status string

const (
	StatusToDo     Status = "todo"
	StatusPicking  Status = "picking"
	StatusReview   Status = "review"
	StatusApproved Status = "approved"
)

// Operator action requesting a status transition.
type Action string

const (
	ActionStartPicking    Action = "start_picking"
	ActionCompletePicking Action = "complete_picking"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
)

// ParseAction validates an action name received from the outside.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionStartPicking, ActionCompletePicking, ActionApprove, ActionReject:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Outcome of adding a unit relative to the line's target quantity. Overpick
// is surfaced as a warning, never rejected: physical miscounts must be
// visible to the operator, not silently blocked.
type PickSignal string

const (
	SignalProgressing PickSignal = "progressing"
	SignalCompleted   PickSignal = "completed"
	SignalOverpick    PickSignal = "overpick"
)

// SignalFor classifies a picked total against the line target.
func SignalFor(picked, target int) PickSignal {
	switch {
	case picked < target:
		return SignalProgressing
	case picked == target:
		return SignalCompleted
	default:
		return SignalOverpick
	}
}

// Box is a physical shipping container (collo) within one order. Items maps
// article code to picked unit count; counts are always > 0, an article
// reaching zero is removed from the map.
type Box struct {
	ID    int            `json:"id"`
	Items map[string]int `json:"items"`
}

// FulfillmentState is the sole mutable entity of the engine: one per order
// identity, persisted across restarts, mutated only through the workflow
// state machine and the packing operations.
type FulfillmentState struct {
	OrderKey         string         `json:"order_key"`
	Status           Status         `json:"status"`
	DeclaredBoxCount int            `json:"declared_box_count"`
	PackingList      []Box          `json:"packing_list"`
	PickedSummary    map[string]int `json:"picked_summary"`
	ArtifactRef      string         `json:"artifact_ref,omitempty"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewFulfillmentState returns the default state for a newly observed order.
func NewFulfillmentState(orderKey string) *FulfillmentState {
	return &FulfillmentState{
		OrderKey:      orderKey,
		Status:        StatusToDo,
		PackingList:   []Box{},
		PickedSummary: map[string]int{},
		UpdatedAt:     time.Now().UTC(),
	}
}

// Clone returns a deep copy, so a mutation can be prepared and persisted
// without exposing intermediate state to concurrent readers.
func (s *FulfillmentState) Clone() *FulfillmentState {
	out := *s
	out.PackingList = make([]Box, len(s.PackingList))
	for i, b := range s.PackingList {
		items := make(map[string]int, len(b.Items))
		for k, v := range b.Items {
			items[k] = v
		}
		out.PackingList[i] = Box{ID: b.ID, Items: items}
	}
	out.PickedSummary = make(map[string]int, len(s.PickedSummary))
	for k, v := range s.PickedSummary {
		out.PickedSummary[k] = v
	}
	return &out
}

// AddBox appends a new empty box with an id one past the current maximum.
// Ids are permanent: boxes are never deleted, only emptied, and ids are
// never reused.
func (s *FulfillmentState) AddBox() int {
	maxID := 0
	for _, b := range s.PackingList {
		if b.ID > maxID {
			maxID = b.ID
		}
	}
	id := maxID + 1
	s.PackingList = append(s.PackingList, Box{ID: id, Items: map[string]int{}})
	return id
}

func (s *FulfillmentState) box(id int) *Box {
	for i := range s.PackingList {
		if s.PackingList[i].ID == id {
			return &s.PackingList[i]
		}
	}
	return nil
}

// AddUnit places one unit of an article into the named box and recomputes
// the picked summary. The box must already exist.
func (s *FulfillmentState) AddUnit(boxID int, articleCode string) error {
	b := s.box(boxID)
	if b == nil {
		return fmt.Errorf("box %d: %w", boxID, ErrBoxNotFound)
	}
	if b.Items == nil {
		b.Items = map[string]int{}
	}
	b.Items[articleCode]++
	s.RecomputeSummary()
	return nil
}

// RemoveUnit takes one unit of an article out of the named box, flooring at
// zero. Removing an absent article is a no-op, not an error: operators tap
// "remove" defensively.
func (s *FulfillmentState) RemoveUnit(boxID int, articleCode string) error {
	b := s.box(boxID)
	if b == nil {
		return fmt.Errorf("box %d: %w", boxID, ErrBoxNotFound)
	}
	if n, ok := b.Items[articleCode]; ok {
		if n <= 1 {
			delete(b.Items, articleCode)
		} else {
			b.Items[articleCode] = n - 1
		}
	}
	s.RecomputeSummary()
	return nil
}

// RecomputeSummary rebuilds PickedSummary from the packing list. Every
// mutation funnels through here; the summary is never hand-incremented, so
// pickedSummary[article] == sum over boxes of items[article] always holds.
func (s *FulfillmentState) RecomputeSummary() {
	summary := make(map[string]int)
	for _, b := range s.PackingList {
		for code, n := range b.Items {
			summary[code] += n
		}
	}
	s.PickedSummary = summary
}

// Picked returns the current picked total for an article.
func (s *FulfillmentState) Picked(articleCode string) int {
	return s.PickedSummary[articleCode]
}

// ResetPacking clears packing progress for a fresh picking pass, preventing
// stale box contents from a rejected pass contaminating the new one.
func (s *FulfillmentState) ResetPacking() {
	s.PackingList = []Box{}
	s.PickedSummary = map[string]int{}
	s.DeclaredBoxCount = 0
}
