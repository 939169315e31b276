package services

import (
	"context"
	"fmt"

	"order-fulfillment-service/internal/domain"
	"order-fulfillment-service/internal/platform/obs"
)

// PickResult reports the per-article totals after a packing mutation.
// Signal is set only for additions; removals carry no pacing feedback.
type PickResult struct {
	ArticleCode string            `json:"article_code"`
	Picked      int               `json:"picked"`
	Target      int               `json:"target"`
	Signal      domain.PickSignal `json:"signal,omitempty"`
}

// Packing implements the box and unit operations of the picking phase. It
// validates articles against the cached order content and delegates the
// actual list mutation to the state under its per-order lock.
type Packing struct {
	states  *StateStore
	content *ContentCache
}

func NewPacking(states *StateStore, content *ContentCache) *Packing {
	return &Packing{states: states, content: content}
}

// CreateBox opens a new box on the order and returns its id.
func (p *Packing) CreateBox(ctx context.Context, orderKey string) (_ int, err error) {
	defer obs.Time(ctx, "packing.CreateBox")(&err)

	if _, err := p.content.FindOrder(ctx, orderKey); err != nil {
		return 0, err
	}

	var boxID int
	_, err = p.states.Mutate(ctx, orderKey, func(s *domain.FulfillmentState) error {
		boxID = s.AddBox()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return boxID, nil
}

// AddUnit places one unit of an article into a box and reports the picked
// total against the line target. Articles not on the order are rejected;
// exceeding the target is allowed and flagged as an overpick.
func (p *Packing) AddUnit(ctx context.Context, orderKey string, boxID int, articleCode string) (_ PickResult, err error) {
	defer obs.Time(ctx, "packing.AddUnit")(&err)

	content, err := p.content.FindOrder(ctx, orderKey)
	if err != nil {
		return PickResult{}, err
	}
	line, ok := content.Line(articleCode)
	if !ok {
		return PickResult{}, fmt.Errorf("article %q on order %q: %w", articleCode, orderKey, domain.ErrArticleNotInOrder)
	}

	state, err := p.states.Mutate(ctx, orderKey, func(s *domain.FulfillmentState) error {
		return s.AddUnit(boxID, articleCode)
	})
	if err != nil {
		return PickResult{}, err
	}

	picked := state.Picked(articleCode)
	target := line.TargetQuantity()
	return PickResult{
		ArticleCode: articleCode,
		Picked:      picked,
		Target:      target,
		Signal:      domain.SignalFor(picked, target),
	}, nil
}

// RemoveUnit takes one unit of an article out of a box. Removing an article
// the box does not hold leaves the state unchanged and reports the current
// totals.
func (p *Packing) RemoveUnit(ctx context.Context, orderKey string, boxID int, articleCode string) (_ PickResult, err error) {
	defer obs.Time(ctx, "packing.RemoveUnit")(&err)

	content, err := p.content.FindOrder(ctx, orderKey)
	if err != nil {
		return PickResult{}, err
	}

	state, err := p.states.Mutate(ctx, orderKey, func(s *domain.FulfillmentState) error {
		return s.RemoveUnit(boxID, articleCode)
	})
	if err != nil {
		return PickResult{}, err
	}

	target := 0
	if line, ok := content.Line(articleCode); ok {
		target = line.TargetQuantity()
	}
	return PickResult{
		ArticleCode: articleCode,
		Picked:      state.Picked(articleCode),
		Target:      target,
	}, nil
}
