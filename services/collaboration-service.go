package services

import (
	"context"
	"errors"
	"fmt"

	"taskboard-service/logging"
	"taskboard-service/models"
	"taskboard-service/realtime"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// CollaboratorStore is the persistence capability for invitation rows.
type CollaboratorStore interface {
	Create(ctx context.Context, collaborator models.Collaborator) error
	GetByProjectAndUser(ctx context.Context, projectID, userID string) (models.Collaborator, error)
	ListByUserAndStatus(ctx context.Context, userID string, status models.CollaboratorStatus) ([]models.Collaborator, error)
	UpdateStatus(ctx context.Context, projectID, userID string, from, to models.CollaboratorStatus) (int64, error)
	Delete(ctx context.Context, projectID, userID string) error
	DeleteByProject(ctx context.Context, projectID string) error
}

// UserStore resolves user identities for invitations.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// ProjectStore is the persistence capability for projects. Shared with
// ProjectService.
type ProjectStore interface {
	Create(ctx context.Context, project models.Project) error
	GetByID(ctx context.Context, id string) (models.Project, error)
	ListByUser(ctx context.Context, userID string) ([]models.Project, error)
	ListByFolder(ctx context.Context, folderID string) ([]models.Project, error)
	Update(ctx context.Context, id string, updates bson.M) error
	ClearFolder(ctx context.Context, folderID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// CollaborationService drives the invitation lifecycle:
// none -> pending -> accepted, with decline removing the row.
type CollaborationService struct {
	collaborators CollaboratorStore
	users         UserStore
	projects      ProjectStore
	notifications *NotificationService
	hub           *realtime.Hub
}

func NewCollaborationService(
	collaborators CollaboratorStore,
	users UserStore,
	projects ProjectStore,
	notifications *NotificationService,
	hub *realtime.Hub,
) *CollaborationService {
	return &CollaborationService{
		collaborators: collaborators,
		users:         users,
		projects:      projects,
		notifications: notifications,
		hub:           hub,
	}
}

// Invite creates a pending collaborator row for the user behind the
// email and then notifies them. The collaborator write must succeed
// before the notification is attempted; a failed notification write is
// tolerated (re-sending recovers it) and never rolls back the invite.
func (cs *CollaborationService) Invite(ctx context.Context, projectID, inviterID, inviteeEmail string) (models.Collaborator, error) {
	invitee, err := cs.users.GetByEmail(ctx, inviteeEmail)
	if errors.Is(err, models.ErrNotFound) {
		return models.Collaborator{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.Collaborator{}, err
	}

	if invitee.ID == inviterID {
		return models.Collaborator{}, models.ErrSelfInvite
	}

	existing, err := cs.collaborators.GetByProjectAndUser(ctx, projectID, invitee.ID)
	if err == nil {
		return models.Collaborator{}, &models.DuplicateInviteError{Status: existing.Status}
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.Collaborator{}, err
	}

	project, err := cs.projects.GetByID(ctx, projectID)
	if err != nil {
		return models.Collaborator{}, err
	}

	inviter, err := cs.users.GetByID(ctx, inviterID)
	if err != nil {
		return models.Collaborator{}, err
	}

	collaborator := models.Collaborator{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    invitee.ID,
		InvitedBy: inviterID,
		Role:      models.RoleMember,
		Status:    models.CollaboratorPending,
		CreatedAt: nowUTC(),
	}
	if err := cs.collaborators.Create(ctx, collaborator); err != nil {
		return models.Collaborator{}, err
	}
	cs.hub.Publish(realtime.Event{Entity: realtime.EntityCollaborator, Action: realtime.Inserted, Record: collaborator})

	notification := models.Notification{
		UserID:  invitee.ID,
		Type:    models.NotificationTypeInvite,
		Title:   "New Project Invitation",
		Message: fmt.Sprintf("%s invited you to collaborate on %q", inviter.DisplayName, project.Name),
		Data: map[string]string{
			models.DataProjectID:   project.ID,
			models.DataProjectName: project.Name,
			models.DataInviterID:   inviter.ID,
			models.DataInviterName: inviter.DisplayName,
		},
	}
	if _, err := cs.notifications.Create(ctx, notification); err != nil {
		// The invite stands without its notification; re-sending
		// recovers the gap.
		logging.Logger.Warnf("Invite for project %s stored but notification delivery failed: %v", projectID, err)
	}

	return collaborator, nil
}

// Accept moves the pending collaborator row for the notification's
// project to accepted and removes the triggering notification. It
// returns the project id the caller should navigate into. Repeating
// Accept after success is a no-op success: realtime delivery may
// dispatch the same action from multiple open views.
func (cs *CollaborationService) Accept(ctx context.Context, notification models.Notification, userID string) (string, error) {
	projectID := notification.Data[models.DataProjectID]
	if projectID == "" {
		return "", fmt.Errorf("notification carries no project id")
	}

	modified, err := cs.collaborators.UpdateStatus(ctx, projectID, userID, models.CollaboratorPending, models.CollaboratorAccepted)
	if err != nil {
		return "", err
	}
	if modified == 0 {
		existing, err := cs.collaborators.GetByProjectAndUser(ctx, projectID, userID)
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrNotFound
		}
		if err != nil {
			return "", err
		}
		if existing.Status != models.CollaboratorAccepted {
			return "", models.ErrNotFound
		}
		// Already accepted by an earlier delivery of the same action.
	} else {
		accepted, err := cs.collaborators.GetByProjectAndUser(ctx, projectID, userID)
		if err == nil {
			cs.hub.Publish(realtime.Event{Entity: realtime.EntityCollaborator, Action: realtime.Updated, Record: accepted})
		}
	}

	if err := cs.notifications.Delete(ctx, notification); err != nil {
		// The membership is in place; surfacing the error lets the
		// caller retry, which lands on the no-op path above.
		return "", err
	}
	return projectID, nil
}

// Reject declines an invitation by deleting the collaborator row
// ("rejected" is never persisted) and removes the notification.
// Rejecting an already-gone invitation is a no-op success.
func (cs *CollaborationService) Reject(ctx context.Context, notification models.Notification, userID string) error {
	projectID := notification.Data[models.DataProjectID]
	if projectID == "" {
		return fmt.Errorf("notification carries no project id")
	}

	existing, err := cs.collaborators.GetByProjectAndUser(ctx, projectID, userID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		// Already removed; fall through to notification cleanup.
	case err != nil:
		return err
	default:
		if err := cs.collaborators.Delete(ctx, projectID, userID); err != nil {
			return err
		}
		cs.hub.Publish(realtime.Event{Entity: realtime.EntityCollaborator, Action: realtime.Deleted, Record: existing})
	}

	return cs.notifications.Delete(ctx, notification)
}

// SharedProjects returns the projects the user can reach through
// accepted collaborator rows, flagged as shared.
func (cs *CollaborationService) SharedProjects(ctx context.Context, userID string) ([]models.Project, error) {
	memberships, err := cs.collaborators.ListByUserAndStatus(ctx, userID, models.CollaboratorAccepted)
	if err != nil {
		return nil, err
	}

	var shared []models.Project
	for _, m := range memberships {
		project, err := cs.projects.GetByID(ctx, m.ProjectID)
		if errors.Is(err, models.ErrNotFound) {
			// Project deleted after the membership was granted.
			continue
		}
		if err != nil {
			return nil, err
		}
		project.Shared = true
		shared = append(shared, project)
	}
	return shared, nil
}
