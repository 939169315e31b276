package dto

type CreateBoxResponse struct {
	BoxID int `json:"box_id"`
}

// ScanRequest carries the raw scanned value; alias resolution happens
// server-side.
type ScanRequest struct {
	Code string `json:"code"`
}

type RemoveUnitRequest struct {
	Code string `json:"code"`
}

type PickResultResponse struct {
	ArticleCode string `json:"article_code"`
	Picked      int    `json:"picked"`
	Target      int    `json:"target"`
	Signal      string `json:"signal,omitempty"`
}
