package erp

import "encoding/json"

// Request and response shapes of the Mexal Passepartout web API. Searches
// are POSTs with a lowercase "filtri" list; results arrive wrapped in a
// "dati" envelope.

type mexalFilter struct {
	Field           string `json:"campo"`
	Condition       string `json:"condizione"`
	Value           any    `json:"valore"`
	CaseInsensitive bool   `json:"case_insensitive,omitempty"`
}

type mexalSearch struct {
	Filters []mexalFilter `json:"filtri"`
}

type mexalEnvelope struct {
	Data json.RawMessage `json:"dati"`
}

type mexalClientRow struct {
	Code       string `json:"codice"`
	Name       string `json:"ragione_sociale"`
	Street     string `json:"indirizzo"`
	Locality   string `json:"localita"`
	PostalCode string `json:"cap"`
	Province   string `json:"provincia"`
}

type mexalOrderHeaderRow struct {
	Prefix            string `json:"sigla"`
	Series            int    `json:"serie"`
	Number            int    `json:"numero"`
	ClientCode        string `json:"cod_conto"`
	ShippingAddressID string `json:"id_indirizzo_spedizione"`
	PaymentID         int    `json:"id_pagamento"`
}

type mexalOrderLineRow struct {
	Prefix      string  `json:"sigla"`
	Series      int     `json:"serie"`
	Number      int     `json:"numero"`
	ArticleCode string  `json:"codice_articolo"`
	Description string  `json:"descrizione"`
	Quantity    float64 `json:"quantita"`
	UnitsPerBox float64 `json:"qta_per_collo"`
	BoxCount    float64 `json:"colli"`
}

type mexalAddressRow struct {
	ID         string `json:"id"`
	ClientCode string `json:"cod_conto"`
	Street     string `json:"indirizzo"`
	Locality   string `json:"localita"`
	PostalCode string `json:"cap"`
	Province   string `json:"provincia"`
	Country    string `json:"nazione"`
	Phone      string `json:"telefono1"`
}

type mexalPaymentRow struct {
	ID          int    `json:"id"`
	Description string `json:"descrizione"`
}

type mexalArticleRow struct {
	Code        string `json:"codice"`
	Description string `json:"descrizione"`
	AltCode     string `json:"cod_alternativo"`
}
