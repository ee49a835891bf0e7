package handlers

import (
	"net/http"

	"taskboard-service/logging"
	"taskboard-service/realtime"
	"taskboard-service/services"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// RealtimeHandler streams scoped change events to clients over a
// websocket. One connection carries one scope; the subscription lives
// exactly as long as the connection.
type RealtimeHandler struct {
	hub      *realtime.Hub
	projects *services.ProjectService
	auth     *services.AuthService
}

func NewRealtimeHandler(hub *realtime.Hub, projects *services.ProjectService, auth *services.AuthService) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, projects: projects, auth: auth}
}

// scopeFor builds the subscription predicate from the request. The
// user identity is resolved before the predicate is constructed; a
// scope must never close over a value still being looked up.
func (h *RealtimeHandler) scopeFor(r *http.Request, userID string) (realtime.Scope, error) {
	switch r.URL.Query().Get("scope") {
	case "project":
		projectID := r.URL.Query().Get("projectId")
		if _, err := h.projects.GetProject(r.Context(), projectID, userID); err != nil {
			return nil, err
		}
		return realtime.ProjectTasks(projectID), nil
	case "notifications":
		return realtime.UserNotifications(userID), nil
	default:
		// Everything addressed to this user: notifications, invite
		// state, own projects and folders.
		return realtime.AnyOf(
			realtime.UserNotifications(userID),
			realtime.UserCollaborations(userID),
			realtime.UserProjects(userID),
		), nil
	}
}

func (h *RealtimeHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CurrentUser(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}

	scope, err := h.scopeFor(r, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logging.Logger.Warnf("Websocket accept failed for user %s: %v", user.ID, err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	sub := h.hub.Subscribe(scope, realtime.DefaultBuffer)
	defer h.hub.Unsubscribe(sub)

	// The client only listens; CloseRead surfaces disconnects as
	// context cancellation.
	ctx := conn.CloseRead(r.Context())

	logging.Logger.Infof("Realtime stream opened for user %s.", user.ID)
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case e, ok := <-sub.Events():
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := wsjson.Write(ctx, conn, e); err != nil {
				logging.Logger.Warnf("Realtime stream write failed for user %s: %v", user.ID, err)
				return
			}
			if dropped := sub.TakeDropped(); dropped > 0 {
				// The stream has a gap; tell the client to re-pull
				// its snapshot instead of trusting the feed.
				if err := wsjson.Write(ctx, conn, map[string]interface{}{
					"entity": "system", "action": "RESYNC", "dropped": dropped,
				}); err != nil {
					return
				}
			}
		}
	}
}
