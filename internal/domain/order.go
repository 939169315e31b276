package domain

import "math"

// Postal address as carried by the ERP for clients and order-specific
// shipping destinations.
type Address struct {
	Street     string
	Locality   string
	PostalCode string
	Province   string
	Country    string
	Phone      string
}

// Complete reports whether the address is usable as a shipping destination.
// Both street and locality must be present for an order-specific address to
// override the client's registered one.
func (a Address) Complete() bool {
	return a.Street != "" && a.Locality != ""
}

// Client is the ERP customer record an order belongs to.
type Client struct {
	Code    string
	Name    string
	Address Address
}

// A single article row of an order.
type OrderLine struct {
	ArticleCode string
	Description string
	Quantity    float64
	UnitsPerBox float64
	BoxCount    float64
}

// TargetQuantity is the integer quantity that must end up picked for this
// line: boxCount*unitsPerBox when a box count is declared, the raw ordered
// quantity otherwise, rounded to the nearest unit.
func (l OrderLine) TargetQuantity() int {
	if l.BoxCount > 0 {
		return int(math.Round(l.BoxCount * l.UnitsPerBox))
	}
	return int(math.Round(l.Quantity))
}

// OrderContent is the immutable order data sourced from the ERP: header,
// client, effective shipping address and article lines. It is constructed
// on cache refresh and replaced wholesale, never partially mutated.
type OrderContent struct {
	Identity     OrderIdentity
	Client       Client
	ShipTo       Address
	PaymentTerms string
	Lines        []OrderLine
}

// Line returns the order line for an article code.
func (c *OrderContent) Line(articleCode string) (OrderLine, bool) {
	for _, l := range c.Lines {
		if l.ArticleCode == articleCode {
			return l, true
		}
	}
	return OrderLine{}, false
}

// EffectiveAddress applies the shipping fallback rule: the order-specific
// address wins only when complete, otherwise the client's registered address.
func EffectiveAddress(specific Address, client Client) Address {
	if specific.Complete() {
		return specific
	}
	return client.Address
}
