package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard-service/logging"
	"taskboard-service/models"
	"taskboard-service/services"
)

type CollaborationHandler struct {
	service *services.CollaborationService
	auth    *services.AuthService
}

func NewCollaborationHandler(service *services.CollaborationService, auth *services.AuthService) *CollaborationHandler {
	return &CollaborationHandler{service: service, auth: auth}
}

func (h *CollaborationHandler) currentUser(r *http.Request) (models.User, error) {
	return h.auth.CurrentUser(r.Context(), bearerToken(r))
}

func (h *CollaborationHandler) Invite(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		ProjectID string `json:"projectId"`
		Email     string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.ProjectID == "" || req.Email == "" {
		http.Error(w, "Project id and email are required", http.StatusBadRequest)
		return
	}

	collaborator, err := h.service.Invite(r.Context(), req.ProjectID, user.ID, req.Email)
	if err != nil {
		logging.Logger.Warnf("Invite to project %s by user %s failed: %v", req.ProjectID, user.ID, err)
		writeError(w, err)
		return
	}
	logging.Logger.Infof("User %s invited %s to project %s.", user.ID, req.Email, req.ProjectID)
	writeJSON(w, http.StatusCreated, collaborator)
}

func (h *CollaborationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	n, err := decodeNotification(r, user.ID)
	if err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	projectID, err := h.service.Accept(r.Context(), n, user.ID)
	if err != nil {
		logging.Logger.Warnf("Accept invite failed for user %s: %v", user.ID, err)
		writeError(w, err)
		return
	}
	logging.Logger.Infof("User %s accepted invitation to project %s.", user.ID, projectID)
	writeJSON(w, http.StatusOK, map[string]string{"projectId": projectID})
}

func (h *CollaborationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	n, err := decodeNotification(r, user.ID)
	if err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.service.Reject(r.Context(), n, user.ID); err != nil {
		logging.Logger.Warnf("Reject invite failed for user %s: %v", user.ID, err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *CollaborationHandler) SharedProjects(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	projects, err := h.service.SharedProjects(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}
