package realtime

import "taskboard-service/models"

type Entity string

const (
	EntityTask         Entity = "task"
	EntityProject      Entity = "project"
	EntityFolder       Entity = "folder"
	EntityCollaborator Entity = "collaborator"
	EntityNotification Entity = "notification"
)

type Action string

const (
	Inserted Action = "INSERT"
	Updated  Action = "UPDATE"
	Deleted  Action = "DELETE"
)

// Record is any entity record carried by a change event.
type Record interface {
	RecordID() string
}

// Event is one change delivered to subscribers. Record holds the new
// state for inserts and updates, and the last known state for deletes.
type Event struct {
	Entity Entity `json:"entity"`
	Action Action `json:"action"`
	Record Record `json:"record"`
}

// Scope is the filter predicate defining which events a subscription
// covers. Scopes must be built from already-resolved identifiers,
// never from a value still being looked up.
type Scope func(Event) bool

// ProjectTasks matches task events belonging to a single project.
func ProjectTasks(projectID string) Scope {
	return func(e Event) bool {
		if e.Entity != EntityTask {
			return false
		}
		t, ok := e.Record.(models.Task)
		return ok && t.ProjectID != nil && *t.ProjectID == projectID
	}
}

// UserNotifications matches notification events addressed to one user.
func UserNotifications(userID string) Scope {
	return func(e Event) bool {
		if e.Entity != EntityNotification {
			return false
		}
		n, ok := e.Record.(models.Notification)
		return ok && n.UserID == userID
	}
}

// UserCollaborations matches collaborator events where the user is the
// invitee.
func UserCollaborations(userID string) Scope {
	return func(e Event) bool {
		if e.Entity != EntityCollaborator {
			return false
		}
		c, ok := e.Record.(models.Collaborator)
		return ok && c.UserID == userID
	}
}

// UserProjects matches project and folder events owned by one user.
func UserProjects(userID string) Scope {
	return func(e Event) bool {
		switch rec := e.Record.(type) {
		case models.Project:
			return e.Entity == EntityProject && rec.UserID == userID
		case models.Folder:
			return e.Entity == EntityFolder && rec.UserID == userID
		}
		return false
	}
}

// AnyOf combines scopes; the event passes if any scope matches.
func AnyOf(scopes ...Scope) Scope {
	return func(e Event) bool {
		for _, s := range scopes {
			if s(e) {
				return true
			}
		}
		return false
	}
}
