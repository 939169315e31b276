package dto

type ArticleResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	AltCode     string `json:"alt_code,omitempty"`
}

type ListArticlesResponse struct {
	Articles []ArticleResponse `json:"articles"`
}

// AliasUpdateRequest sets an article's alternate (barcode) code; an empty
// alias clears it.
type AliasUpdateRequest struct {
	Alias string `json:"alias"`
}
