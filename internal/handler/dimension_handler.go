package handler

import (
	"net/http"

	"school-admin/internal/model"
	"school-admin/internal/service"
)

type DimensionHandler struct {
	service *service.DimensionService
}

func NewDimensionHandler(service *service.DimensionService) *DimensionHandler {
	return &DimensionHandler{service: service}
}

func (h *DimensionHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	dims, err := h.service.List(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, dims, nil)
}

func (h *DimensionHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var payload model.DimensionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	dim, err := h.service.Create(r.Context(), id, payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, dim, nil)
}

func (h *DimensionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	dimensionID, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.DimensionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	dim, err := h.service.Update(r.Context(), id, dimensionID, payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, dim, nil)
}
