package handlers

import (
	"net/http"

	"order-fulfillment-service/internal/api/dto"
	"order-fulfillment-service/internal/domain"
	"order-fulfillment-service/internal/services"
)

type OrderHandler struct {
	Content  *services.ContentCache
	States   *services.StateStore
	Workflow *services.Workflow
}

// List returns every open order with its status and coarse picking
// progress. Orders never touched by a picker show the default to-do state
// without materializing one.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Content.Orders(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	states, err := h.States.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	statesByKey := make(map[string]*domain.FulfillmentState, len(states))
	for _, s := range states {
		statesByKey[s.OrderKey] = s
	}

	res := dto.ListOrdersResponse{Orders: make([]dto.OrderSummaryResponse, 0, len(orders))}
	for _, o := range orders {
		status := domain.StatusToDo
		picked := 0
		if s, ok := statesByKey[o.Identity.Key()]; ok {
			status = s.Status
			for _, n := range s.PickedSummary {
				picked += n
			}
		}

		target := 0
		for _, l := range o.Lines {
			target += l.TargetQuantity()
		}

		res.Orders = append(res.Orders, dto.OrderSummaryResponse{
			Key:         o.Identity.Key(),
			ClientName:  o.Client.Name,
			Locality:    o.ShipTo.Locality,
			Status:      string(status),
			PickedUnits: picked,
			TargetUnits: target,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Detail joins the order's ERP content with its fulfillment state.
func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	content, err := h.Content.FindOrder(r.Context(), key)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	state, err := h.States.Get(r.Context(), key)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toOrderDetail(content, state))
}

// Transition applies a workflow action to the order.
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var req dto.TransitionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	action, err := domain.ParseAction(req.Action)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.Content.FindOrder(r.Context(), key); err != nil {
		writeDomainError(w, r, err)
		return
	}

	state, err := h.Workflow.Apply(r.Context(), key, action, services.TransitionParams{
		DeclaredBoxCount: req.DeclaredBoxCount,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toStateResponse(state))
}

// Refresh forces a content reload from the ERP.
func (h *OrderHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	n, err := h.Content.Refresh(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.RefreshResponse{OrdersLoaded: n})
}

func toStateResponse(s *domain.FulfillmentState) dto.FulfillmentStateResponse {
	boxes := make([]dto.BoxResponse, 0, len(s.PackingList))
	for _, b := range s.PackingList {
		boxes = append(boxes, dto.BoxResponse{ID: b.ID, Items: b.Items})
	}
	return dto.FulfillmentStateResponse{
		Status:           string(s.Status),
		DeclaredBoxCount: s.DeclaredBoxCount,
		PackingList:      boxes,
		PickedSummary:    s.PickedSummary,
		ArtifactRef:      s.ArtifactRef,
		UpdatedAt:        s.UpdatedAt,
	}
}

func toOrderDetail(content *domain.OrderContent, state *domain.FulfillmentState) dto.OrderDetailResponse {
	lines := make([]dto.OrderLineResponse, 0, len(content.Lines))
	for _, l := range content.Lines {
		lines = append(lines, dto.OrderLineResponse{
			ArticleCode: l.ArticleCode,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitsPerBox: l.UnitsPerBox,
			BoxCount:    l.BoxCount,
			Target:      l.TargetQuantity(),
			Picked:      state.Picked(l.ArticleCode),
		})
	}

	return dto.OrderDetailResponse{
		Key:        content.Identity.Key(),
		ClientName: content.Client.Name,
		ShipTo: dto.AddressResponse{
			Street:     content.ShipTo.Street,
			Locality:   content.ShipTo.Locality,
			PostalCode: content.ShipTo.PostalCode,
			Province:   content.ShipTo.Province,
			Country:    content.ShipTo.Country,
			Phone:      content.ShipTo.Phone,
		},
		PaymentTerms: content.PaymentTerms,
		Lines:        lines,
		State:        toStateResponse(state),
	}
}
