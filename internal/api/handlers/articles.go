package handlers

import (
	"net/http"
	"strings"

	"order-fulfillment-service/internal/api/dto"
	"order-fulfillment-service/internal/ports"
)

type ArticleHandler struct {
	ERP ports.ERPClient
}

// Search looks articles up in the ERP master data by code or description.
func (h *ArticleHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "q is required")
		return
	}
	byCode := r.URL.Query().Get("by") != "description"

	articles, err := h.ERP.SearchArticles(r.Context(), query, byCode)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListArticlesResponse{Articles: make([]dto.ArticleResponse, 0, len(articles))}
	for _, a := range articles {
		res.Articles = append(res.Articles, dto.ArticleResponse{
			Code:        a.Code,
			Description: a.Description,
			AltCode:     a.AltCode,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// UpdateAlias writes an article's alternate (barcode) code in the ERP. An
// empty alias clears the current one.
func (h *ArticleHandler) UpdateAlias(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	var req dto.AliasUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.ERP.UpdateArticleAlias(r.Context(), code, strings.TrimSpace(req.Alias)); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
