package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"order-fulfillment-service/internal/domain"
	"order-fulfillment-service/internal/ports"
)

// One immutable view of everything the ERP knows about open orders. A
// refresh builds a complete replacement snapshot; readers always see either
// the previous snapshot or the new one, never a partial mix.
type contentSnapshot struct {
	loadedAt time.Time
	orders   map[string]*domain.OrderContent
}

// ContentCache is the time-bounded read-through cache of immutable order
// content (header + client + effective address + lines), bulk-loaded from
// the ERP the way the legacy system loaded its spreadsheet.
//
// It holds its own lock, separate from the fulfillment state store: a slow
// ERP reload must never block picking mutations. Workflow actions read it,
// never mutate it.
type ContentCache struct {
	erp ports.ERPClient
	ttl time.Duration

	refreshMu sync.Mutex
	snap      atomic.Pointer[contentSnapshot]
	stale     atomic.Bool
}

func NewContentCache(erp ports.ERPClient, ttl time.Duration) *ContentCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ContentCache{erp: erp, ttl: ttl}
}

// LastLoaded reports when the current snapshot was built; zero when the
// cache has never loaded.
func (c *ContentCache) LastLoaded() time.Time {
	if s := c.snap.Load(); s != nil {
		return s.loadedAt
	}
	return time.Time{}
}

// Invalidate marks the snapshot stale so the next read reloads. Called by
// the staleness detector; it touches only content, never fulfillment state.
func (c *ContentCache) Invalidate() {
	c.stale.Store(true)
}

func (c *ContentCache) fresh(s *contentSnapshot) bool {
	return s != nil && !c.stale.Load() && time.Since(s.loadedAt) < c.ttl
}

// Refresh reloads the cache from the ERP unconditionally and returns the
// number of orders loaded.
func (c *ContentCache) Refresh(ctx context.Context) (int, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.reload(ctx)
}

// snapshot returns a usable snapshot, reloading when empty, expired or
// invalidated. A failed reload falls back to the prior snapshot
// (stale-but-available) when one exists.
func (c *ContentCache) snapshot(ctx context.Context) (*contentSnapshot, error) {
	if s := c.snap.Load(); c.fresh(s) {
		return s, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have finished a reload while we waited.
	if s := c.snap.Load(); c.fresh(s) {
		return s, nil
	}

	if _, err := c.reload(ctx); err != nil {
		if s := c.snap.Load(); s != nil {
			return s, nil
		}
		return nil, err
	}
	return c.snap.Load(), nil
}

// reload performs the bulk load: clients, payment methods, shipping
// addresses, order headers and order lines, joined into OrderContent
// values. The caller must hold refreshMu. On any fetch error the current
// snapshot is left untouched.
func (c *ContentCache) reload(ctx context.Context) (int, error) {
	clients, err := c.erp.FetchClients(ctx)
	if err != nil {
		return 0, fmt.Errorf("content refresh: %w", err)
	}
	payments, err := c.erp.FetchPaymentMethods(ctx)
	if err != nil {
		return 0, fmt.Errorf("content refresh: %w", err)
	}
	addresses, err := c.erp.FetchShippingAddresses(ctx)
	if err != nil {
		return 0, fmt.Errorf("content refresh: %w", err)
	}
	headers, err := c.erp.FetchOrderHeaders(ctx)
	if err != nil {
		return 0, fmt.Errorf("content refresh: %w", err)
	}
	lines, err := c.erp.FetchOrderLines(ctx)
	if err != nil {
		return 0, fmt.Errorf("content refresh: %w", err)
	}

	clientsByCode := make(map[string]domain.Client, len(clients))
	for _, cl := range clients {
		clientsByCode[cl.Code] = domain.Client{
			Code: cl.Code,
			Name: cl.Name,
			Address: domain.Address{
				Street:     cl.Street,
				Locality:   cl.Locality,
				PostalCode: cl.PostalCode,
				Province:   cl.Province,
			},
		}
	}

	addressesByID := make(map[string]domain.Address, len(addresses))
	for _, a := range addresses {
		addressesByID[a.ID] = domain.Address{
			Street:     a.Street,
			Locality:   a.Locality,
			PostalCode: a.PostalCode,
			Province:   a.Province,
			Country:    a.Country,
			Phone:      a.Phone,
		}
	}

	linesByOrder := make(map[string][]domain.OrderLine, len(headers))
	for _, l := range lines {
		key := domain.OrderIdentity{Prefix: l.Prefix, Series: l.Series, Number: l.Number}.Key()
		linesByOrder[key] = append(linesByOrder[key], domain.OrderLine{
			ArticleCode: l.ArticleCode,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitsPerBox: l.UnitsPerBox,
			BoxCount:    l.BoxCount,
		})
	}

	orders := make(map[string]*domain.OrderContent, len(headers))
	for _, h := range headers {
		id := domain.OrderIdentity{Prefix: h.Prefix, Series: h.Series, Number: h.Number}
		client := clientsByCode[h.ClientCode]

		orders[id.Key()] = &domain.OrderContent{
			Identity:     id,
			Client:       client,
			ShipTo:       domain.EffectiveAddress(addressesByID[h.ShippingAddressID], client),
			PaymentTerms: payments[h.PaymentID],
			Lines:        linesByOrder[id.Key()],
		}
	}

	c.snap.Store(&contentSnapshot{loadedAt: time.Now(), orders: orders})
	c.stale.Store(false)

	return len(orders), nil
}

// GetOrder returns the content for one order, read-only.
func (c *ContentCache) GetOrder(ctx context.Context, orderKey string) (*domain.OrderContent, error) {
	s, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	order, ok := s.orders[orderKey]
	if !ok {
		return nil, fmt.Errorf("order %q: %w", orderKey, domain.ErrOrderNotFound)
	}
	return order, nil
}

// FindOrder is GetOrder with one forced refresh on a miss: an operator may
// scan an order created after the last load. Still missing after the
// refresh means the order does not exist.
func (c *ContentCache) FindOrder(ctx context.Context, orderKey string) (*domain.OrderContent, error) {
	content, err := c.GetOrder(ctx, orderKey)
	if !errors.Is(err, domain.ErrOrderNotFound) {
		return content, err
	}

	if _, rerr := c.Refresh(ctx); rerr != nil {
		return nil, err
	}
	return c.GetOrder(ctx, orderKey)
}

// Orders returns all cached orders sorted by key.
func (c *ContentCache) Orders(ctx context.Context) ([]*domain.OrderContent, error) {
	s, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(s.orders))
	for k := range s.orders {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*domain.OrderContent, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.orders[k])
	}
	return out, nil
}
