package handlers

import (
	"encoding/json"
	"net/http"

	"taskboard-service/logging"
	"taskboard-service/models"
	"taskboard-service/services"
)

type NotificationHandler struct {
	service *services.NotificationService
	auth    *services.AuthService
}

func NewNotificationHandler(service *services.NotificationService, auth *services.AuthService) *NotificationHandler {
	return &NotificationHandler{service: service, auth: auth}
}

func (h *NotificationHandler) currentUser(r *http.Request) (models.User, error) {
	return h.auth.CurrentUser(r.Context(), bearerToken(r))
}

// decodeNotification reads the notification record echoed by the
// client and pins it to the authenticated user, whatever the body
// claims.
func decodeNotification(r *http.Request, userID string) (models.Notification, error) {
	var n models.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		return models.Notification{}, err
	}
	n.UserID = userID
	return n, nil
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	notifications, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		logging.Logger.Errorf("Failed to fetch notifications for user %s: %v", user.ID, err)
		writeError(w, err)
		return
	}
	// Always return a JSON array, even when empty.
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
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
	if n.ID == "" || n.CreatedAt.IsZero() {
		http.Error(w, "Notification id and createdAt are required", http.StatusBadRequest)
		return
	}

	if err := h.service.MarkRead(r.Context(), n); err != nil {
		logging.Logger.Errorf("Failed to mark notification %s as read for user %s: %v", n.ID, user.ID, err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.MarkAllRead(r.Context(), user.ID); err != nil {
		logging.Logger.Errorf("Failed to mark all notifications read for user %s: %v", user.ID, err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if n.ID == "" || n.CreatedAt.IsZero() {
		http.Error(w, "Notification id and createdAt are required", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), n); err != nil {
		logging.Logger.Errorf("Failed to delete notification %s for user %s: %v", n.ID, user.ID, err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
