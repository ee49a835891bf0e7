package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard-service/logging"
	"taskboard-service/models"
	"taskboard-service/services"

	"github.com/gorilla/mux"
)

type ProjectHandler struct {
	service *services.ProjectService
	auth    *services.AuthService
}

func NewProjectHandler(service *services.ProjectService, auth *services.AuthService) *ProjectHandler {
	return &ProjectHandler{service: service, auth: auth}
}

func (h *ProjectHandler) currentUser(r *http.Request) (models.User, error) {
	return h.auth.CurrentUser(r.Context(), bearerToken(r))
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Name     string  `json:"name"`
		Color    string  `json:"color"`
		FolderID *string `json:"folderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Project name is required", http.StatusBadRequest)
		return
	}

	project, err := h.service.CreateProject(r.Context(), req.Name, req.Color, req.FolderID, user.ID)
	if err != nil {
		logging.Logger.Warnf("Failed to create project for user %s: %v", user.ID, err)
		writeError(w, err)
		return
	}
	logging.Logger.Infof("Project %s created by user %s.", project.ID, user.ID)
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	projects, err := h.service.ListProjects(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProjectByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	project, err := h.service.GetProject(r.Context(), mux.Vars(r)["id"], user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Color       *string `json:"color"`
		FolderID    *string `json:"folderId"`
		ClearFolder bool    `json:"clearFolder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	project, err := h.service.UpdateProject(r.Context(), mux.Vars(r)["id"], user.ID, services.ProjectUpdate{
		Name:        req.Name,
		Color:       req.Color,
		FolderID:    req.FolderID,
		ClearFolder: req.ClearFolder,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.DeleteProject(r.Context(), mux.Vars(r)["id"], user.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *ProjectHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Folder name is required", http.StatusBadRequest)
		return
	}

	folder, err := h.service.CreateFolder(r.Context(), req.Name, req.Color, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (h *ProjectHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	folders, err := h.service.ListFolders(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	writeJSON(w, http.StatusOK, folders)
}

func (h *ProjectHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.DeleteFolder(r.Context(), mux.Vars(r)["id"], user.ID); err != nil {
		writeError(w, err)
		return
	}
	logging.Logger.Infof("Folder %s deleted by user %s; projects reparented.", mux.Vars(r)["id"], user.ID)
	w.WriteHeader(http.StatusOK)
}
