package handler

import (
	"net/http"
	"strings"

	"school-admin/internal/model"
	"school-admin/internal/service"
)

type ActivityHandler struct {
	service *service.ActivityService
}

func NewActivityHandler(service *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	dimensionID, err := queryInt64(r, "dimensionId")
	if err != nil {
		writeError(w, err)
		return
	}

	query := r.URL.Query()
	items, meta, err := h.service.List(r.Context(), id, model.ActivityQuery{
		TaskID:      strings.TrimSpace(query.Get("taskId")),
		FolderID:    strings.TrimSpace(query.Get("folderId")),
		DimensionID: dimensionID,
		Page:        parseIntOrDefault(query.Get("page"), 1),
		Limit:       parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, items, &meta)
}

func (h *ActivityHandler) System(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	logs, err := h.service.SystemLogs(r.Context(), id, parseIntOrDefault(r.URL.Query().Get("limit"), 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, logs, nil)
}
