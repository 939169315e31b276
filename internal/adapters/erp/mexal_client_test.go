package erp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"order-fulfillment-service/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *MexalClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewMexalClient(srv.URL, "secret-token", "Azienda=SRL Anno=2026", 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestResolveArticleAliasSendsFilter(t *testing.T) {
	var gotAuth, gotCoords string
	var gotBody mexalSearch

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCoords = r.Header.Get("Coordinate-Gestionale")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"dati":[{"codice":"A100"}]}`))
	})

	code, err := client.ResolveArticleAlias(context.Background(), "8001234567890")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "A100" {
		t.Fatalf("code = %q, want A100", code)
	}

	if gotAuth != "Passepartout secret-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotCoords != "Azienda=SRL Anno=2026" {
		t.Errorf("Coordinate-Gestionale = %q", gotCoords)
	}
	if len(gotBody.Filters) != 1 {
		t.Fatalf("filters = %d, want 1", len(gotBody.Filters))
	}
	f := gotBody.Filters[0]
	if f.Field != "cod_alternativo" || f.Condition != "=" || f.Value != "8001234567890" {
		t.Errorf("filter = %+v", f)
	}
}

func TestResolveArticleAliasNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dati":[]}`))
	})

	code, err := client.ResolveArticleAlias(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "" {
		t.Fatalf("code = %q, want empty", code)
	}
}

func TestSearchRetriesTransientErrors(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"dati":[{"codice":"C1","ragione_sociale":"Rossi"}]}`))
	})

	clients, err := client.FetchClients(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
	if len(clients) != 1 || clients[0].Code != "C1" || clients[0].Name != "Rossi" {
		t.Fatalf("clients = %+v", clients)
	}
}

func TestSearchDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.FetchClients(context.Background())
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestFetchArticleDetailNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	detail, err := client.FetchArticleDetail(context.Background(), "Z999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail != nil {
		t.Fatalf("detail = %+v, want nil", detail)
	}
}

func TestUpdateArticleAlias(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.UpdateArticleAlias(context.Background(), "A100", "8001234567890"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("method = %q, want PUT", gotMethod)
	}
	if gotPath != "/risorse/articoli/A100" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["cod_alternativo"] != "8001234567890" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestUpdateArticleAliasUnexpectedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	if err := client.UpdateArticleAlias(context.Background(), "A100", "x"); err == nil {
		t.Fatal("expected error for non-204 response")
	}
}

func TestCountOrdersModifiedSince(t *testing.T) {
	var gotBody mexalSearch
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"dati":[{"sigla":"OC"},{"sigla":"OC"}]}`))
	})

	since := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	n, err := client.CountOrdersModifiedSince(context.Background(), since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}

	if len(gotBody.Filters) != 1 {
		t.Fatalf("filters = %d, want 1", len(gotBody.Filters))
	}
	f := gotBody.Filters[0]
	if f.Field != "ultima_modifica" || f.Condition != ">" || f.Value != "20260301103000" {
		t.Errorf("filter = %+v", f)
	}
}

func TestFetchOrderLinesDecodesItalianFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dati":[
			{"sigla":"OC","serie":1,"numero":100,"codice_articolo":"A100","descrizione":"Viti","quantita":5,"qta_per_collo":3,"colli":2}
		]}`))
	})

	lines, err := client.FetchOrderLines(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}

	l := lines[0]
	if l.Prefix != "OC" || l.Series != 1 || l.Number != 100 {
		t.Errorf("identity = %s/%d/%d", l.Prefix, l.Series, l.Number)
	}
	if l.ArticleCode != "A100" || l.Quantity != 5 || l.UnitsPerBox != 3 || l.BoxCount != 2 {
		t.Errorf("line = %+v", l)
	}
}
