package api

import (
	"net/http"

	"order-fulfillment-service/internal/adapters/notify"
	"order-fulfillment-service/internal/api/handlers"
	"order-fulfillment-service/internal/ports"
	"order-fulfillment-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	content *services.ContentCache,
	states *services.StateStore,
	workflow *services.Workflow,
	packing *services.Packing,
	barcode *services.BarcodeResolver,
	erp ports.ERPClient,
	hub *notify.Hub,
) http.Handler {
	mux := http.NewServeMux()

	orderHandler := &handlers.OrderHandler{Content: content, States: states, Workflow: workflow}
	packingHandler := &handlers.PackingHandler{Packing: packing, Barcode: barcode}
	articleHandler := &handlers.ArticleHandler{ERP: erp}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("GET /v1/orders", orderHandler.List)
	mux.HandleFunc("GET /v1/orders/{key}", orderHandler.Detail)
	mux.HandleFunc("POST /v1/orders/{key}/transition", orderHandler.Transition)
	mux.HandleFunc("POST /v1/refresh", orderHandler.Refresh)

	mux.HandleFunc("POST /v1/orders/{key}/boxes", packingHandler.CreateBox)
	mux.HandleFunc("POST /v1/orders/{key}/boxes/{boxID}/scan", packingHandler.Scan)
	mux.HandleFunc("POST /v1/orders/{key}/boxes/{boxID}/remove", packingHandler.Remove)

	mux.HandleFunc("GET /v1/articles", articleHandler.Search)
	mux.HandleFunc("PUT /v1/articles/{code}/alias", articleHandler.UpdateAlias)

	if hub != nil {
		mux.HandleFunc("GET /ws", hub.HandleWebSocket)
	}

	return requestIDMiddleware(loggingMiddleware(mux))
}
