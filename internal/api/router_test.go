package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"order-fulfillment-service/internal/adapters/erp"
	"order-fulfillment-service/internal/adapters/repositories"
	"order-fulfillment-service/internal/ports"
	"order-fulfillment-service/internal/services"
)

type nullGenerator struct{}

func (nullGenerator) GenerateAndStore(ctx context.Context, req ports.ArtifactRequest) (string, error) {
	return "packinglist.xlsx", nil
}

func newTestServer(t *testing.T) (*httptest.Server, *erp.MockERPClient) {
	t.Helper()

	mock := &erp.MockERPClient{
		Clients: []ports.ClientRaw{{Code: "C1", Name: "Ferramenta Rossi", Street: "Via Roma 1", Locality: "Milano"}},
		Headers: []ports.OrderHeaderRaw{{Prefix: "OC", Series: 1, Number: 100, ClientCode: "C1"}},
		Lines: []ports.OrderLineRaw{
			{Prefix: "OC", Series: 1, Number: 100, ArticleCode: "A100", Description: "Viti", Quantity: 2},
		},
		Aliases: map[string]string{"8001234567890": "A100"},
	}

	content := services.NewContentCache(mock, time.Hour)
	states := services.NewStateStore(repositories.NewMemoryFulfillmentStore())
	workflow := services.NewWorkflow(states, content, nullGenerator{}, nil)
	packing := services.NewPacking(states, content)
	barcode := services.NewBarcodeResolver(mock, nil)

	srv := httptest.NewServer(NewRouter(content, states, workflow, packing, barcode, mock, nil))
	t.Cleanup(srv.Close)
	return srv, mock
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestListOrders(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/orders", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	orders, ok := body["orders"].([]any)
	if !ok || len(orders) != 1 {
		t.Fatalf("orders = %v", body["orders"])
	}
	first := orders[0].(map[string]any)
	if first["key"] != "OC:1:100" || first["status"] != "todo" {
		t.Fatalf("order = %v", first)
	}
}

func TestOrderDetailNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/orders/OC:9:999", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestTransitionRejectsUnknownAction(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/orders/OC:1:100/transition", `{"action":"ship"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestTransitionConflict(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/orders/OC:1:100/transition", `{"action":"approve"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestScanFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/v1/orders/OC:1:100"

	resp, _ := doJSON(t, http.MethodPost, base+"/transition", `{"action":"start_picking"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start_picking status = %d", resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodPost, base+"/boxes", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create box status = %d", resp.StatusCode)
	}
	if body["box_id"] != float64(1) {
		t.Fatalf("box_id = %v", body["box_id"])
	}

	// scan by alias resolves to A100
	resp, body = doJSON(t, http.MethodPost, base+"/boxes/1/scan", `{"code":"8001234567890"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("scan status = %d", resp.StatusCode)
	}
	if body["article_code"] != "A100" || body["picked"] != float64(1) || body["signal"] != "progressing" {
		t.Fatalf("scan result = %v", body)
	}

	// unknown article is a 422
	resp, _ = doJSON(t, http.MethodPost, base+"/boxes/1/scan", `{"code":"Z999"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("foreign article status = %d, want 422", resp.StatusCode)
	}

	// unknown box is a 404
	resp, _ = doJSON(t, http.MethodPost, base+"/boxes/9/scan", `{"code":"A100"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown box status = %d, want 404", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, base+"/boxes/1/remove", `{"code":"A100"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, base+"/transition", `{"action":"complete_picking","declared_box_count":"1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete_picking status = %d", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodPost, base+"/transition", `{"action":"approve"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve status = %d", resp.StatusCode)
	}
	if body["status"] != "approved" || body["artifact_ref"] != "packinglist.xlsx" {
		t.Fatalf("approve result = %v", body)
	}
}
