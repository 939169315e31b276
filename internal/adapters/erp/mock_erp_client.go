package erp

import (
	"context"
	"fmt"
	"time"

	"order-fulfillment-service/internal/domain"
	"order-fulfillment-service/internal/ports"
)

// MockERPClient is an in-memory ERPClient for tests and offline runs.
// Setting Fail makes every call return ErrUpstreamUnavailable, simulating
// the ERP being unreachable.
type MockERPClient struct {
	Clients   []ports.ClientRaw
	Headers   []ports.OrderHeaderRaw
	Lines     []ports.OrderLineRaw
	Addresses []ports.AddressRaw
	Payments  map[int]string
	Articles  []ports.ArticleDetail
	Aliases   map[string]string

	Fail          bool
	ModifiedCount int
	FetchCalls    int
}

var _ ports.ERPClient = (*MockERPClient)(nil)

func (m *MockERPClient) err(op string) error {
	return fmt.Errorf("mock erp: %s: %w", op, domain.ErrUpstreamUnavailable)
}

func (m *MockERPClient) FetchClients(ctx context.Context) ([]ports.ClientRaw, error) {
	m.FetchCalls++
	if m.Fail {
		return nil, m.err("fetch clients")
	}
	return m.Clients, nil
}

func (m *MockERPClient) FetchOrderHeaders(ctx context.Context) ([]ports.OrderHeaderRaw, error) {
	if m.Fail {
		return nil, m.err("fetch order headers")
	}
	return m.Headers, nil
}

func (m *MockERPClient) FetchOrderLines(ctx context.Context) ([]ports.OrderLineRaw, error) {
	if m.Fail {
		return nil, m.err("fetch order lines")
	}
	return m.Lines, nil
}

func (m *MockERPClient) FetchShippingAddresses(ctx context.Context) ([]ports.AddressRaw, error) {
	if m.Fail {
		return nil, m.err("fetch shipping addresses")
	}
	return m.Addresses, nil
}

func (m *MockERPClient) FetchPaymentMethods(ctx context.Context) (map[int]string, error) {
	if m.Fail {
		return nil, m.err("fetch payment methods")
	}
	return m.Payments, nil
}

func (m *MockERPClient) ResolveArticleAlias(ctx context.Context, altCode string) (string, error) {
	if m.Fail {
		return "", m.err("resolve article alias")
	}
	return m.Aliases[altCode], nil
}

func (m *MockERPClient) FetchArticleDetail(ctx context.Context, code string) (*ports.ArticleDetail, error) {
	if m.Fail {
		return nil, m.err("fetch article detail")
	}
	for _, a := range m.Articles {
		if a.Code == code {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MockERPClient) SearchArticles(ctx context.Context, query string, byCode bool) ([]ports.ArticleDetail, error) {
	if m.Fail {
		return nil, m.err("search articles")
	}
	return m.Articles, nil
}

func (m *MockERPClient) UpdateArticleAlias(ctx context.Context, code, alias string) error {
	if m.Fail {
		return m.err("update article alias")
	}
	if m.Aliases == nil {
		m.Aliases = map[string]string{}
	}
	if alias == "" {
		for k, v := range m.Aliases {
			if v == code {
				delete(m.Aliases, k)
			}
		}
		return nil
	}
	m.Aliases[alias] = code
	return nil
}

func (m *MockERPClient) CountOrdersModifiedSince(ctx context.Context, since time.Time) (int, error) {
	if m.Fail {
		return 0, m.err("count orders modified since")
	}
	return m.ModifiedCount, nil
}
