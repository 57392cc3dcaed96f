package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mkuznetsov/todo-api/internal/auth"
	"github.com/mkuznetsov/todo-api/internal/model"
	"github.com/mkuznetsov/todo-api/internal/repo"
	"github.com/mkuznetsov/todo-api/internal/service"
	"github.com/mkuznetsov/todo-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

type taskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// owner сверяет владельца из пути с subject из токена. Проверка идет
// до любого обращения к хранилищу; subject - единственный источник истины.
func (h *TaskHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID := chi.URLParam(r, "owner_id")
	if ownerID != auth.SubjectFrom(r.Context()) {
		respond.Error(w, r, http.StatusForbidden, "forbidden", "cannot access another user's resources")
		return "", false
	}
	return ownerID, true
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "bad_request", "empty request body")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid json: %v", err))
		return
	}

	task, err := h.service.Create(r.Context(), model.Task{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/%s/tasks/%d", task.OwnerID, task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := model.TaskFilter{
		Status: q.Get("status"),
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit"), 100); err != nil {
		respond.FieldError(w, r, http.StatusBadRequest, "bad_request", "limit must be an integer", "limit")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset"), 0); err != nil {
		respond.FieldError(w, r, http.StatusBadRequest, "bad_request", "offset must be an integer", "offset")
		return
	}

	list, err := h.service.List(r.Context(), ownerID, filter)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, list)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	task, err := h.service.Get(r.Context(), ownerID, id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	task, err := h.service.Update(r.Context(), model.Task{
		ID:          id,
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	task, err := h.service.ToggleComplete(r.Context(), ownerID, id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	if err := h.service.Delete(r.Context(), ownerID, id); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *service.ValidationError
	var pErr *service.ParamError

	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not_found", "task not found")
	case errors.As(err, &vErr):
		respond.FieldError(w, r, http.StatusBadRequest, "validation_error", vErr.Detail, vErr.Field)
	case errors.As(err, &pErr):
		respond.FieldError(w, r, http.StatusBadRequest, "bad_request", pErr.Detail, pErr.Param)
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal", "internal error")
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
