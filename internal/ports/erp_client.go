package ports

import (
	"context"
	"time"
)

// Raw ERP customer record.
type ClientRaw struct {
	Code       string
	Name       string
	Street     string
	Locality   string
	PostalCode string
	Province   string
}

// Raw order header as returned by the ERP document search.
type OrderHeaderRaw struct {
	Prefix            string
	Series            int
	Number            int
	ClientCode        string
	ShippingAddressID string
	PaymentID         int
}

// Raw order line. Lines reference their order by the same prefix/series/
// number triple as the header.
type OrderLineRaw struct {
	Prefix      string
	Series      int
	Number      int
	ArticleCode string
	Description string
	Quantity    float64
	UnitsPerBox float64
	BoxCount    float64
}

// Raw shipping address record.
type AddressRaw struct {
	ID         string
	ClientCode string
	Street     string
	Locality   string
	PostalCode string
	Province   string
	Country    string
	Phone      string
}

// Article master-data detail.
type ArticleDetail struct {
	Code        string
	Description string
	AltCode     string
}

// Port: boundary to the ERP system of record for order content and article
// master data. All calls may fail transiently; readers keep their prior
// cache on failure.
type ERPClient interface {
	FetchClients(ctx context.Context) ([]ClientRaw, error)
	FetchOrderHeaders(ctx context.Context) ([]OrderHeaderRaw, error)
	FetchOrderLines(ctx context.Context) ([]OrderLineRaw, error)
	FetchShippingAddresses(ctx context.Context) ([]AddressRaw, error)
	FetchPaymentMethods(ctx context.Context) (map[int]string, error)

	// ResolveArticleAlias returns the primary article code registered for a
	// scanned alternate code, or "" when no alias matches.
	ResolveArticleAlias(ctx context.Context, altCode string) (string, error)
	FetchArticleDetail(ctx context.Context, code string) (*ArticleDetail, error)
	SearchArticles(ctx context.Context, query string, byCode bool) ([]ArticleDetail, error)

	// UpdateArticleAlias writes an article's alternate code; an empty alias
	// clears it.
	UpdateArticleAlias(ctx context.Context, code, alias string) error

	// CountOrdersModifiedSince reports how many order documents changed
	// after the given instant. Used by the staleness detector.
	CountOrdersModifiedSince(ctx context.Context, since time.Time) (int, error)
}
