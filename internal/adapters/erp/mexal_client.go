package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"order-fulfillment-service/internal/domain"
	"order-fulfillment-service/internal/platform/obs"
	"order-fulfillment-service/internal/ports"
)

// MexalClient implements the ERPClient port against the Passepartout Mexal
// web API.
//
// The coordinates string selects company/year/warehouse on every call
// (e.g. "Azienda=SRL Anno=2025 Magazzino=3"). The client is safe for
// concurrent use.
type MexalClient struct {
	session     *http.Client
	baseURL     string
	token       string
	coordinates string
}

func NewMexalClient(baseURL, token, coordinates string, timeout time.Duration) (*MexalClient, error) {
	if baseURL == "" {
		return nil, errors.New("mexal base URL is empty")
	}
	if token == "" {
		return nil, errors.New("mexal auth token is empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &MexalClient{
		session:     &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		token:       token,
		coordinates: coordinates,
	}, nil
}

var _ ports.ERPClient = (*MexalClient)(nil)

func (m *MexalClient) FetchClients(ctx context.Context) (_ []ports.ClientRaw, err error) {
	defer obs.Time(ctx, "mexal.FetchClients")(&err)

	var rows []mexalClientRow
	endpoint := "risorse/clienti/ricerca?fields=codice,ragione_sociale,indirizzo,localita,cap,provincia"
	if err := m.search(ctx, endpoint, nil, &rows); err != nil {
		return nil, err
	}

	out := make([]ports.ClientRaw, 0, len(rows))
	for _, r := range rows {
		out = append(out, ports.ClientRaw{
			Code:       r.Code,
			Name:       r.Name,
			Street:     r.Street,
			Locality:   r.Locality,
			PostalCode: r.PostalCode,
			Province:   r.Province,
		})
	}
	return out, nil
}

func (m *MexalClient) FetchOrderHeaders(ctx context.Context) (_ []ports.OrderHeaderRaw, err error) {
	defer obs.Time(ctx, "mexal.FetchOrderHeaders")(&err)

	var rows []mexalOrderHeaderRow
	if err := m.search(ctx, "risorse/documenti/ordini-clienti/ricerca", nil, &rows); err != nil {
		return nil, err
	}

	out := make([]ports.OrderHeaderRaw, 0, len(rows))
	for _, r := range rows {
		out = append(out, ports.OrderHeaderRaw{
			Prefix:            r.Prefix,
			Series:            r.Series,
			Number:            r.Number,
			ClientCode:        r.ClientCode,
			ShippingAddressID: r.ShippingAddressID,
			PaymentID:         r.PaymentID,
		})
	}
	return out, nil
}

func (m *MexalClient) FetchOrderLines(ctx context.Context) (_ []ports.OrderLineRaw, err error) {
	defer obs.Time(ctx, "mexal.FetchOrderLines")(&err)

	var rows []mexalOrderLineRow
	if err := m.search(ctx, "risorse/documenti/ordini-clienti/righe/ricerca", nil, &rows); err != nil {
		return nil, err
	}

	out := make([]ports.OrderLineRaw, 0, len(rows))
	for _, r := range rows {
		out = append(out, ports.OrderLineRaw{
			Prefix:      r.Prefix,
			Series:      r.Series,
			Number:      r.Number,
			ArticleCode: r.ArticleCode,
			Description: r.Description,
			Quantity:    r.Quantity,
			UnitsPerBox: r.UnitsPerBox,
			BoxCount:    r.BoxCount,
		})
	}
	return out, nil
}

func (m *MexalClient) FetchShippingAddresses(ctx context.Context) (_ []ports.AddressRaw, err error) {
	defer obs.Time(ctx, "mexal.FetchShippingAddresses")(&err)

	var rows []mexalAddressRow
	endpoint := "risorse/indirizzi-spedizione/ricerca?fields=id,cod_conto,indirizzo,localita,cap,provincia,nazione,telefono1"
	if err := m.search(ctx, endpoint, nil, &rows); err != nil {
		return nil, err
	}

	out := make([]ports.AddressRaw, 0, len(rows))
	for _, r := range rows {
		out = append(out, ports.AddressRaw{
			ID:         r.ID,
			ClientCode: r.ClientCode,
			Street:     r.Street,
			Locality:   r.Locality,
			PostalCode: r.PostalCode,
			Province:   r.Province,
			Country:    r.Country,
			Phone:      r.Phone,
		})
	}
	return out, nil
}

func (m *MexalClient) FetchPaymentMethods(ctx context.Context) (_ map[int]string, err error) {
	defer obs.Time(ctx, "mexal.FetchPaymentMethods")(&err)

	var rows []mexalPaymentRow
	if err := m.search(ctx, "risorse/dati-generali/pagamenti/ricerca", nil, &rows); err != nil {
		return nil, err
	}

	out := make(map[int]string, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Description
	}
	return out, nil
}

// ResolveArticleAlias looks up the primary article whose alternate code
// equals the scanned value. Multiple matches resolve to the first; no match
// returns "".
func (m *MexalClient) ResolveArticleAlias(ctx context.Context, altCode string) (_ string, err error) {
	defer obs.Time(ctx, "mexal.ResolveArticleAlias")(&err)

	var rows []mexalArticleRow
	filters := []mexalFilter{{Field: "cod_alternativo", Condition: "=", Value: altCode}}
	if err := m.search(ctx, "risorse/articoli/ricerca?fields=codice", filters, &rows); err != nil {
		return "", err
	}

	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].Code, nil
}

func (m *MexalClient) FetchArticleDetail(ctx context.Context, code string) (_ *ports.ArticleDetail, err error) {
	defer obs.Time(ctx, "mexal.FetchArticleDetail")(&err)

	if code == "" {
		return nil, errors.New("fetch article detail: code is empty")
	}

	resp, err := m.doWithRetry(ctx, func() (*http.Request, error) {
		return m.newRequest(ctx, http.MethodGet, "risorse/articoli/"+code, nil)
	})
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) && he.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch article detail %q: %w: %w", code, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	var row mexalArticleRow
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		return nil, fmt.Errorf("fetch article detail %q: decode: %w", code, err)
	}
	if row.Code == "" {
		return nil, nil
	}

	return &ports.ArticleDetail{Code: row.Code, Description: row.Description, AltCode: row.AltCode}, nil
}

func (m *MexalClient) SearchArticles(ctx context.Context, query string, byCode bool) (_ []ports.ArticleDetail, err error) {
	defer obs.Time(ctx, "mexal.SearchArticles")(&err)

	field := "descrizione"
	if byCode {
		field = "codice"
	}

	var rows []mexalArticleRow
	filters := []mexalFilter{{Field: field, Condition: "contiene", Value: query, CaseInsensitive: true}}
	endpoint := "risorse/articoli/ricerca?fields=codice,descrizione,cod_alternativo"
	if err := m.search(ctx, endpoint, filters, &rows); err != nil {
		return nil, err
	}

	out := make([]ports.ArticleDetail, 0, len(rows))
	for _, r := range rows {
		out = append(out, ports.ArticleDetail{Code: r.Code, Description: r.Description, AltCode: r.AltCode})
	}
	return out, nil
}

// UpdateArticleAlias writes the article's alternate code via PUT; the API
// answers 204 on success. An empty alias clears the code.
func (m *MexalClient) UpdateArticleAlias(ctx context.Context, code, alias string) (err error) {
	defer obs.Time(ctx, "mexal.UpdateArticleAlias")(&err)

	if code == "" {
		return errors.New("update article alias: code is empty")
	}

	payload, err := json.Marshal(map[string]string{"cod_alternativo": alias})
	if err != nil {
		return fmt.Errorf("update article alias %q: marshal: %w", code, err)
	}

	resp, err := m.doWithRetry(ctx, func() (*http.Request, error) {
		return m.newRequest(ctx, http.MethodPut, "risorse/articoli/"+code, bytes.NewReader(payload))
	})
	if err != nil {
		return fmt.Errorf("update article alias %q: %w: %w", code, domain.ErrUpstreamUnavailable, err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("update article alias %q: unexpected status %d", code, resp.StatusCode)
	}
	return nil
}

func (m *MexalClient) CountOrdersModifiedSince(ctx context.Context, since time.Time) (_ int, err error) {
	defer obs.Time(ctx, "mexal.CountOrdersModifiedSince")(&err)

	var rows []mexalOrderHeaderRow
	filters := []mexalFilter{{
		Field:     "ultima_modifica",
		Condition: ">",
		Value:     since.Format("20060102150405"),
	}}
	if err := m.search(ctx, "risorse/documenti/ordini-clienti/ricerca?fields=sigla,serie,numero", filters, &rows); err != nil {
		return 0, err
	}

	return len(rows), nil
}
