package services

import (
	"context"
	"errors"
	"testing"

	"taskboard-service/models"
	"taskboard-service/realtime"
)

type collabFixture struct {
	service       *CollaborationService
	notifications *NotificationService
	collaborators *fakeCollaboratorStore
	projects      *fakeProjectStore
	store         *fakeNotificationStore
	hub           *realtime.Hub
	owner         models.User
	invitee       models.User
	project       models.Project
}

func newCollabFixture(t *testing.T) *collabFixture {
	t.Helper()
	ctx := context.Background()

	users := newFakeUserStore()
	projects := newFakeProjectStore()
	collaborators := newFakeCollaboratorStore()
	store := newFakeNotificationStore()
	hub := realtime.NewHub()

	owner := models.User{ID: "owner", Email: "owner@example.com", DisplayName: "Owner"}
	invitee := models.User{ID: "invitee", Email: "invitee@example.com", DisplayName: "Invitee"}
	users.Create(ctx, owner)
	users.Create(ctx, invitee)

	project := models.Project{ID: "p1", Name: "Launch", UserID: owner.ID}
	projects.Create(ctx, project)

	notifications := NewNotificationService(store, hub)
	service := NewCollaborationService(collaborators, users, projects, notifications, hub)

	return &collabFixture{
		service:       service,
		notifications: notifications,
		collaborators: collaborators,
		projects:      projects,
		store:         store,
		hub:           hub,
		owner:         owner,
		invitee:       invitee,
		project:       project,
	}
}

func (f *collabFixture) inviteeNotification(t *testing.T) models.Notification {
	t.Helper()
	rows := f.store.byUser(f.invitee.ID)
	if len(rows) != 1 {
		t.Fatalf("expected exactly one notification for invitee, got %d", len(rows))
	}
	return rows[0]
}

func TestInviteCreatesPendingRowAndNotification(t *testing.T) {
	f := newCollabFixture(t)
	ctx := context.Background()

	collaborator, err := f.service.Invite(ctx, f.project.ID, f.owner.ID, f.invitee.Email)
	if err != nil {
		t.Fatalf("invite failed: %v", err)
	}
	if collaborator.Status != models.CollaboratorPending {
		t.Fatalf("expected pending status, got %q", collaborator.Status)
	}
	if collaborator.UserID != f.invitee.ID || collaborator.ProjectID != f.project.ID {
		t.Fatalf("unexpected collaborator row: %+v", collaborator)
	}

	n := f.inviteeNotification(t)
	if n.Type != models.NotificationTypeInvite {
		t.Fatalf("expected invite notification, got %q", n.Type)
	}
	if n.Data[models.DataProjectID] != f.project.ID {
		t.Fatalf("notification missing project id: %+v", n.Data)
	}
	if n.Data[models.DataInviterName] != f.owner.DisplayName {
		t.Fatalf("notification missing inviter name: %+v", n.Data)
	}
}

func TestInviteUnknownEmailWritesNothing(t *testing.T) {
	f := newCollabFixture(t)

	_, err := f.service.Invite(context.Background(), f.project.ID, f.owner.ID, "nobody@example.com")
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if f.collaborators.count() != 0 {
		t.Fatal("no collaborator row may be written for an unknown email")
	}
	if len(f.store.byUser(f.invitee.ID)) != 0 {
		t.Fatal("no notification may be written for an unknown email")
	}
}

func TestInviteSelfIsRejected(t *testing.T) {
	f := newCollabFixture(t)

	_, err := f.service.Invite(context.Background(), f.project.ID, f.owner.ID, f.owner.Email)
	if !errors.Is(err, models.ErrSelfInvite) {
		t.Fatalf("expected ErrSelfInvite, got %v", err)
	}
	if f.collaborators.count() != 0 {
		t.Fatal("self-invite must not write a collaborator row")
	}
}

func TestRepeatedInviteReportsExistingStatus(t *testing.T) {
	f := newCollabFixture(t)
	ctx := context.Background()

	if _, err := f.service.Invite(ctx, f.project.ID, f.owner.ID, f.invitee.Email); err != nil {
		t.Fatalf("first invite failed: %v", err)
	}

	_, err := f.service.Invite(ctx, f.project.ID, f.owner.ID, f.invitee.Email)
	if !errIsDuplicateInvite(err) {
		t.Fatalf("expected duplicate invite error, got %v", err)
	}
	var dup *models.DuplicateInviteError
	if !errors.As(err, &dup) || dup.Status != models.CollaboratorPending {
		t.Fatalf("expected pending status in duplicate error, got %v", err)
	}

	if f.collaborators.count() != 1 {
		t.Fatalf("expected a single collaborator row, got %d", f.collaborators.count())
	}
	if got := len(f.store.byUser(f.invitee.ID)); got != 1 {
		t.Fatalf("expected a single notification, got %d", got)
	}
}

func TestInviteSurvivesNotificationFailure(t *testing.T) {
	f := newCollabFixture(t)
	f.store.failWith(models.ErrStoreUnavailable)

	collaborator, err := f.service.Invite(context.Background(), f.project.ID, f.owner.ID, f.invitee.Email)
	if err != nil {
		t.Fatalf("invite must stand when only the notification write fails: %v", err)
	}
	if collaborator.Status != models.CollaboratorPending {
		t.Fatalf("expected pending row, got %q", collaborator.Status)
	}
	if len(f.store.byUser(f.invitee.ID)) != 0 {
		t.Fatal("notification store should hold nothing after a failed write")
	}
}

func TestAcceptMovesRowToAcceptedAndRemovesNotification(t *testing.T) {
	f := newCollabFixture(t)
	ctx := context.Background()

	if _, err := f.service.Invite(ctx, f.project.ID, f.owner.ID, f.invitee.Email); err != nil {
		t.Fatalf("invite failed: %v", err)
	}
	n := f.inviteeNotification(t)

	projectID, err := f.service.Accept(ctx, n, f.invitee.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if projectID != f.project.ID {
		t.Fatalf("expected project id %q, got %q", f.project.ID, projectID)
	}

	row, err := f.collaborators.GetByProjectAndUser(ctx, f.project.ID, f.invitee.ID)
	if err != nil || row.Status != models.CollaboratorAccepted {
		t.Fatalf("expected accepted row, got %+v (%v)", row, err)
	}
	if got := len(f.store.byUser(f.invitee.ID)); got != 0 {
		t.Fatalf("expected the invite notification removed, still have %d", got)
	}
}

func TestAcceptTwiceIsNoOpSuccess(t *testing.T) {
	f := newCollabFixture(t)
	ctx := context.Background()

	if _, err := f.service.Invite(ctx, f.project.ID, f.owner.ID, f.invitee.Email); err != nil {
		t.Fatalf("invite failed: %v", err)
	}
	n := f.inviteeNotification(t)

	if _, err := f.service.Accept(ctx, n, f.invitee.ID); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}
	projectID, err := f.service.Accept(ctx, n, f.invitee.ID)
	if err != nil {
		t.Fatalf("repeated accept must be a no-op success, got %v", err)
	}
	if projectID != f.project.ID {
		t.Fatalf("expected project id %q, got %q", f.project.ID, projectID)
	}
}

func TestAcceptWithoutInvitationFails(t *testing.T) {
	f := newCollabFixture(t)

	n := models.Notification{
		ID:     "stale",
		UserID: f.invitee.ID,
		Data:   map[string]string{models.DataProjectID: f.project.ID},
	}
	_, err := f.service.Accept(context.Background(), n, f.invitee.ID)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectDeletesRowAndNotification(t *testing.T) {
	f := newCollabFixture(t)
	ctx := context.Background()

	if _, err := f.service.Invite(ctx, f.project.ID, f.owner.ID, f.invitee.Email); err != nil {
		t.Fatalf("invite failed: %v", err)
	}
	n := f.inviteeNotification(t)

	if err := f.service.Reject(ctx, n, f.invitee.ID); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if _, err := f.collaborators.GetByProjectAndUser(ctx, f.project.ID, f.invitee.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatal("rejecting must delete the collaborator row, not keep it")
	}
	if got := len(f.store.byUser(f.invitee.ID)); got != 0 {
		t.Fatalf("expected the invite notification removed, still have %d", got)
	}

	// A second reject finds nothing and still succeeds.
	if err := f.service.Reject(ctx, n, f.invitee.ID); err != nil {
		t.Fatalf("repeated reject must be a no-op success, got %v", err)
	}
}

func TestSharedProjectsFlagsAndSkipsDeleted(t *testing.T) {
	f := newCollabFixture(t)
	ctx := context.Background()

	gone := models.Project{ID: "p2", Name: "Gone", UserID: f.owner.ID}
	f.projects.Create(ctx, gone)

	for _, pid := range []string{f.project.ID, gone.ID} {
		if _, err := f.service.Invite(ctx, pid, f.owner.ID, f.invitee.Email); err != nil {
			t.Fatalf("invite to %s failed: %v", pid, err)
		}
	}
	for _, n := range f.store.byUser(f.invitee.ID) {
		if _, err := f.service.Accept(ctx, n, f.invitee.ID); err != nil {
			t.Fatalf("accept failed: %v", err)
		}
	}

	// The second project disappears after the membership was granted.
	f.projects.Delete(ctx, gone.ID)

	shared, err := f.service.SharedProjects(ctx, f.invitee.ID)
	if err != nil {
		t.Fatalf("shared projects failed: %v", err)
	}
	if len(shared) != 1 {
		t.Fatalf("expected one shared project, got %d", len(shared))
	}
	if shared[0].ID != f.project.ID || !shared[0].Shared {
		t.Fatalf("expected %s flagged shared, got %+v", f.project.ID, shared[0])
	}
}
