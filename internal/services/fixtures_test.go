package services

import (
	"context"
	"errors"
	"time"

	"order-fulfillment-service/internal/adapters/erp"
	"order-fulfillment-service/internal/adapters/repositories"
	"order-fulfillment-service/internal/ports"
)

// Shared fixture: one order OC:1:100 for client C1 with two lines,
// A100 (2 boxes of 3, target 6) and B200 (quantity 2, target 2).
const testOrderKey = "OC:1:100"

func newTestERP() *erp.MockERPClient {
	return &erp.MockERPClient{
		Clients: []ports.ClientRaw{
			{Code: "C1", Name: "Ferramenta Rossi", Street: "Via Roma 1", Locality: "Milano", PostalCode: "20100", Province: "MI"},
		},
		Headers: []ports.OrderHeaderRaw{
			{Prefix: "OC", Series: 1, Number: 100, ClientCode: "C1", ShippingAddressID: "S1", PaymentID: 7},
		},
		Lines: []ports.OrderLineRaw{
			{Prefix: "OC", Series: 1, Number: 100, ArticleCode: "A100", Description: "Viti 4x40", Quantity: 5, UnitsPerBox: 3, BoxCount: 2},
			{Prefix: "OC", Series: 1, Number: 100, ArticleCode: "B200", Description: "Tasselli", Quantity: 2},
		},
		Addresses: []ports.AddressRaw{
			{ID: "S1", ClientCode: "C1", Street: "Via Magazzino 9", Locality: "Monza", PostalCode: "20900", Province: "MB"},
		},
		Payments: map[int]string{7: "Bonifico 30gg"},
		Aliases:  map[string]string{"8001234567890": "A100"},
	}
}

type stubGenerator struct {
	ref   string
	err   error
	calls int
}

func (g *stubGenerator) GenerateAndStore(ctx context.Context, req ports.ArtifactRequest) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if g.ref == "" {
		return "packinglist.xlsx", nil
	}
	return g.ref, nil
}

type recordingNotifier struct {
	events chan string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(chan string, 8)}
}

func (n *recordingNotifier) Notify(recipientGroup, title, body string) error {
	n.events <- title
	return nil
}

func (n *recordingNotifier) wait(d time.Duration) (string, error) {
	select {
	case title := <-n.events:
		return title, nil
	case <-time.After(d):
		return "", errors.New("no notification received")
	}
}

type engine struct {
	erp       *erp.MockERPClient
	store     *repositories.MemoryFulfillmentStore
	content   *ContentCache
	states    *StateStore
	packing   *Packing
	workflow  *Workflow
	generator *stubGenerator
	notifier  *recordingNotifier
}

func newEngine() *engine {
	mock := newTestERP()
	store := repositories.NewMemoryFulfillmentStore()
	content := NewContentCache(mock, time.Hour)
	states := NewStateStore(store)
	generator := &stubGenerator{}
	notifier := newRecordingNotifier()

	return &engine{
		erp:       mock,
		store:     store,
		content:   content,
		states:    states,
		packing:   NewPacking(states, content),
		workflow:  NewWorkflow(states, content, generator, notifier),
		generator: generator,
		notifier:  notifier,
	}
}
