package handler

import (
	"net/http"

	"school-admin/internal/service"
)

type StorageHandler struct {
	service *service.StorageService
}

func NewStorageHandler(service *service.StorageService) *StorageHandler {
	return &StorageHandler{service: service}
}

func (h *StorageHandler) Dimensions(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	usage, err := h.service.PerDimensionUsage(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, usage, nil)
}

func (h *StorageHandler) Overall(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	usage, err := h.service.OverallUsage(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, usage, nil)
}
