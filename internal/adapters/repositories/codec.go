package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"order-fulfillment-service/internal/domain"
)

// Row <-> value conversion shared by the SQL-backed stores. Typed values are
// serialized only at this persistence boundary.

type stateRow struct {
	orderKey         string
	status           string
	declaredBoxCount int
	packingList      string
	pickedSummary    string
	artifactRef      string
	updatedAt        string
}

func encodeState(s *domain.FulfillmentState) (stateRow, error) {
	packing, err := json.Marshal(s.PackingList)
	if err != nil {
		return stateRow{}, fmt.Errorf("encode state %q: packing list: %w", s.OrderKey, err)
	}
	summary, err := json.Marshal(s.PickedSummary)
	if err != nil {
		return stateRow{}, fmt.Errorf("encode state %q: picked summary: %w", s.OrderKey, err)
	}

	return stateRow{
		orderKey:         s.OrderKey,
		status:           string(s.Status),
		declaredBoxCount: s.DeclaredBoxCount,
		packingList:      string(packing),
		pickedSummary:    string(summary),
		artifactRef:      s.ArtifactRef,
		updatedAt:        s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func decodeState(r stateRow) (*domain.FulfillmentState, error) {
	s := &domain.FulfillmentState{
		OrderKey:         r.orderKey,
		Status:           domain.Status(r.status),
		DeclaredBoxCount: r.declaredBoxCount,
		ArtifactRef:      r.artifactRef,
	}

	if err := json.Unmarshal([]byte(r.packingList), &s.PackingList); err != nil {
		return nil, fmt.Errorf("decode state %q: packing list: %w", r.orderKey, err)
	}
	if err := json.Unmarshal([]byte(r.pickedSummary), &s.PickedSummary); err != nil {
		return nil, fmt.Errorf("decode state %q: picked summary: %w", r.orderKey, err)
	}

	if r.updatedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, r.updatedAt)
		if err != nil {
			return nil, fmt.Errorf("decode state %q: updated_at: %w", r.orderKey, err)
		}
		s.UpdatedAt = t
	}

	if s.PackingList == nil {
		s.PackingList = []domain.Box{}
	}
	if s.PickedSummary == nil {
		s.PickedSummary = map[string]int{}
	}

	return s, nil
}
