package handler

import (
	"net/http"

	"school-admin/internal/model"
	"school-admin/internal/service"
)

// FolderHandler serves folders and file metadata. Gated routes read the
// unlock token from the X-Unlock-Token header; folder deletion accepts a
// comma separated list, one token per locked folder.
type FolderHandler struct {
	service *service.FolderService
}

func NewFolderHandler(service *service.FolderService) *FolderHandler {
	return &FolderHandler{service: service}
}

func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var payload model.CreateFolderRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	folder, err := h.service.CreateFolder(r.Context(), id, payload, unlockToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, folder, nil)
}

func (h *FolderHandler) Contents(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	folderID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	contents, err := h.service.ListContents(r.Context(), id, folderID, unlockToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, contents, nil)
}

func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	folderID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.service.DeleteFolder(r.Context(), id, folderID, unlockTokens(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"trashed": len(items), "items": items}, nil)
}

func (h *FolderHandler) RegisterFile(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var payload model.RegisterFileRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	file, err := h.service.RegisterFile(r.Context(), id, payload, unlockToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, file, nil)
}

func (h *FolderHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	fileID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.RenameFileRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	file, err := h.service.RenameFile(r.Context(), id, fileID, payload.Name, unlockToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, file, nil)
}

func (h *FolderHandler) MoveFile(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	fileID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.MoveFileRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	file, err := h.service.MoveFile(r.Context(), id, fileID, payload.FolderID, unlockToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, file, nil)
}

func (h *FolderHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	fileID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.service.DeleteFile(r.Context(), id, fileID, unlockToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, item, nil)
}
