package dto

import "time"

// OrderSummaryResponse is one row of the order list view: identity, who it
// ships to, and coarse progress for the picking dashboard.
type OrderSummaryResponse struct {
	Key         string `json:"key"`
	ClientName  string `json:"client_name"`
	Locality    string `json:"locality"`
	Status      string `json:"status"`
	PickedUnits int    `json:"picked_units"`
	TargetUnits int    `json:"target_units"`
}

type ListOrdersResponse struct {
	Orders []OrderSummaryResponse `json:"orders"`
}

type AddressResponse struct {
	Street     string `json:"street"`
	Locality   string `json:"locality"`
	PostalCode string `json:"postal_code"`
	Province   string `json:"province"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

type OrderLineResponse struct {
	ArticleCode string  `json:"article_code"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitsPerBox float64 `json:"units_per_box"`
	BoxCount    float64 `json:"box_count"`
	Target      int     `json:"target"`
	Picked      int     `json:"picked"`
}

type BoxResponse struct {
	ID    int            `json:"id"`
	Items map[string]int `json:"items"`
}

type FulfillmentStateResponse struct {
	Status           string         `json:"status"`
	DeclaredBoxCount int            `json:"declared_box_count"`
	PackingList      []BoxResponse  `json:"packing_list"`
	PickedSummary    map[string]int `json:"picked_summary"`
	ArtifactRef      string         `json:"artifact_ref,omitempty"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// OrderDetailResponse joins the immutable ERP content with the mutable
// fulfillment state for the picking screen.
type OrderDetailResponse struct {
	Key          string                   `json:"key"`
	ClientName   string                   `json:"client_name"`
	ShipTo       AddressResponse          `json:"ship_to"`
	PaymentTerms string                   `json:"payment_terms,omitempty"`
	Lines        []OrderLineResponse      `json:"lines"`
	State        FulfillmentStateResponse `json:"state"`
}

type TransitionRequest struct {
	Action           string `json:"action"`
	DeclaredBoxCount string `json:"declared_box_count,omitempty"`
}

type RefreshResponse struct {
	OrdersLoaded int `json:"orders_loaded"`
}
