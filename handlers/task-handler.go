package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"taskboard-service/logging"
	"taskboard-service/models"
	"taskboard-service/services"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	service  *services.TaskService
	projects *services.ProjectService
	auth     *services.AuthService
}

func NewTaskHandler(service *services.TaskService, projects *services.ProjectService, auth *services.AuthService) *TaskHandler {
	return &TaskHandler{service: service, projects: projects, auth: auth}
}

func (h *TaskHandler) currentUser(r *http.Request) (models.User, error) {
	return h.auth.CurrentUser(r.Context(), bearerToken(r))
}

// canTouch reports whether the user owns the task or has access to its
// project.
func (h *TaskHandler) canTouch(r *http.Request, task models.Task, userID string) bool {
	if task.UserID == userID {
		return true
	}
	if task.ProjectID == nil {
		return false
	}
	_, err := h.projects.GetProject(r.Context(), *task.ProjectID, userID)
	return err == nil
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Title       string             `json:"title"`
		Description string             `json:"description"`
		Status      models.TaskStatus  `json:"status"`
		DueDate     *time.Time         `json:"dueDate"`
		ProjectID   *string            `json:"projectId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Task title is required", http.StatusBadRequest)
		return
	}
	if req.ProjectID != nil {
		if _, err := h.projects.GetProject(r.Context(), *req.ProjectID, user.ID); err != nil {
			writeError(w, err)
			return
		}
	}

	task, err := h.service.CreateTask(r.Context(), models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
		UserID:      user.ID,
	})
	if err != nil {
		logging.Logger.Warnf("Failed to create task for user %s: %v", user.ID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tasks, err := h.service.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTasksByProject(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	projectID := mux.Vars(r)["projectId"]
	if _, err := h.projects.GetProject(r.Context(), projectID, user.ID); err != nil {
		writeError(w, err)
		return
	}

	tasks, err := h.service.ListByProject(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Calendar returns the user's tasks due inside [start, end], both
// passed as RFC 3339 dates.
func (h *TaskHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "Invalid start parameter", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, "Invalid end parameter", http.StatusBadRequest)
		return
	}

	tasks, err := h.service.ListByDueRange(r.Context(), user.ID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id := mux.Vars(r)["id"]
	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.canTouch(r, task, user.ID) {
		writeError(w, models.ErrNotFound)
		return
	}

	var req struct {
		Title        *string            `json:"title"`
		Description  *string            `json:"description"`
		Status       *models.TaskStatus `json:"status"`
		DueDate      *time.Time         `json:"dueDate"`
		ClearDueDate bool               `json:"clearDueDate"`
		ProjectID    *string            `json:"projectId"`
		ClearProject bool               `json:"clearProject"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateTask(r.Context(), id, services.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		ProjectID:    req.ProjectID,
		ClearProject: req.ClearProject,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id := mux.Vars(r)["id"]
	task, err := h.service.GetTask(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		// Deleting an absent task is a no-op.
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.canTouch(r, task, user.ID) {
		writeError(w, models.ErrNotFound)
		return
	}

	if err := h.service.DeleteTask(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
