package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"order-fulfillment-service/internal/api/dto"
	"order-fulfillment-service/internal/services"
)

type PackingHandler struct {
	Packing *services.Packing
	Barcode *services.BarcodeResolver
}

// CreateBox opens a new box on the order.
func (h *PackingHandler) CreateBox(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	boxID, err := h.Packing.CreateBox(r.Context(), key)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.CreateBoxResponse{BoxID: boxID})
}

func boxIDFromPath(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("boxID"))
	return id, err == nil && id > 0
}

// Scan resolves the scanned code to an article and adds one unit of it to
// the box.
func (h *PackingHandler) Scan(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	boxID, ok := boxIDFromPath(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid box id")
		return
	}

	var req dto.ScanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, r, http.StatusBadRequest, "code is required")
		return
	}

	code, err := h.Barcode.Resolve(r.Context(), req.Code)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	result, err := h.Packing.AddUnit(r.Context(), key, boxID, code)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPickResult(result))
}

// Remove takes one unit of the scanned article back out of the box.
func (h *PackingHandler) Remove(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	boxID, ok := boxIDFromPath(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid box id")
		return
	}

	var req dto.RemoveUnitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, r, http.StatusBadRequest, "code is required")
		return
	}

	code, err := h.Barcode.Resolve(r.Context(), req.Code)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	result, err := h.Packing.RemoveUnit(r.Context(), key, boxID, code)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPickResult(result))
}

func toPickResult(res services.PickResult) dto.PickResultResponse {
	return dto.PickResultResponse{
		ArticleCode: res.ArticleCode,
		Picked:      res.Picked,
		Target:      res.Target,
		Signal:      string(res.Signal),
	}
}
