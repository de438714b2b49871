package handler

import (
	"net/http"

	"school-admin/internal/model"
	"school-admin/internal/service"
)

type TaskHandler struct {
	service *service.TaskService
}

func NewTaskHandler(service *service.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	folderID, err := requiredQueryUUID(r, "folderId")
	if err != nil {
		writeError(w, err)
		return
	}

	tasks, err := h.service.ListByFolder(r.Context(), id, folderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, tasks, nil)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var payload model.CreateTaskRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.service.Create(r.Context(), id, payload, unlockToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, task, nil)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	taskID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	task, err := h.service.Get(r.Context(), id, taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, task, nil)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	taskID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateTaskRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.service.Update(r.Context(), id, taskID, payload, unlockToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, task, nil)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	taskID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id, taskID, unlockToken(r)); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}

func (h *TaskHandler) IncompleteCount(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	folderID, err := requiredQueryUUID(r, "folderId")
	if err != nil {
		writeError(w, err)
		return
	}

	n, err := h.service.IncompleteCount(r.Context(), id, folderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, model.CountData{Count: n}, nil)
}

func (h *TaskHandler) Mine(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	items, err := h.service.MyAssignments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, items, nil)
}

func (h *TaskHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	taskID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.SubmitWorkRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	sub, err := h.service.Submit(r.Context(), id, taskID, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, sub, nil)
}

func (h *TaskHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	taskID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.ReviewRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.service.Review(r.Context(), id, taskID, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, task, nil)
}

func (h *TaskHandler) Revisions(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	taskID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	revisions, err := h.service.Revisions(r.Context(), id, taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, revisions, nil)
}

func (h *TaskHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	taskID, err := queryUUID(r, "taskId")
	if err != nil {
		writeError(w, err)
		return
	}
	assignmentID, err := queryUUID(r, "assignmentId")
	if err != nil {
		writeError(w, err)
		return
	}

	subs, err := h.service.ListSubmissions(r.Context(), id, model.SubmissionQuery{
		TaskID:       taskID,
		AssignmentID: assignmentID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, subs, nil)
}

func (h *TaskHandler) PendingRevisions(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	n, err := h.service.PendingRevisionsCount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, model.CountData{Count: n}, nil)
}
