package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard-service/models"
	"taskboard-service/realtime"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// FolderStore is the persistence capability for folders.
type FolderStore interface {
	Create(ctx context.Context, folder models.Folder) error
	GetByID(ctx context.Context, id string) (models.Folder, error)
	ListByUser(ctx context.Context, userID string) ([]models.Folder, error)
	Delete(ctx context.Context, id string) error
}

// ProjectUpdate carries a partial project edit; nil fields are left
// untouched. ClearFolder moves the project out of its folder.
type ProjectUpdate struct {
	Name        *string
	Color       *string
	FolderID    *string
	ClearFolder bool
}

type ProjectService struct {
	projects      ProjectStore
	folders       FolderStore
	tasks         TaskStore
	collaborators CollaboratorStore
	hub           *realtime.Hub
}

func NewProjectService(
	projects ProjectStore,
	folders FolderStore,
	tasks TaskStore,
	collaborators CollaboratorStore,
	hub *realtime.Hub,
) *ProjectService {
	return &ProjectService{
		projects:      projects,
		folders:       folders,
		tasks:         tasks,
		collaborators: collaborators,
		hub:           hub,
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// checkFolder verifies the referenced folder exists and belongs to the
// same user. A project's folder reference must never point across
// owners.
func (s *ProjectService) checkFolder(ctx context.Context, folderID, userID string) error {
	folder, err := s.folders.GetByID(ctx, folderID)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("folder %s: %w", folderID, models.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if folder.UserID != userID {
		return fmt.Errorf("folder %s does not belong to the project owner", folderID)
	}
	return nil
}

func (s *ProjectService) CreateProject(ctx context.Context, name, color string, folderID *string, userID string) (models.Project, error) {
	if name == "" {
		return models.Project{}, fmt.Errorf("project name is required")
	}
	if folderID != nil {
		if err := s.checkFolder(ctx, *folderID, userID); err != nil {
			return models.Project{}, err
		}
	}

	project := models.Project{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		FolderID:  folderID,
		UserID:    userID,
		CreatedAt: nowUTC(),
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return models.Project{}, err
	}
	s.hub.Publish(realtime.Event{Entity: realtime.EntityProject, Action: realtime.Inserted, Record: project})
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	return s.projects.ListByUser(ctx, userID)
}

// GetProject returns the project if the user owns it or holds an
// accepted collaborator row. Anything else reads as not found.
func (s *ProjectService) GetProject(ctx context.Context, id, userID string) (models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if project.UserID == userID {
		return project, nil
	}

	membership, err := s.collaborators.GetByProjectAndUser(ctx, id, userID)
	if errors.Is(err, models.ErrNotFound) {
		return models.Project{}, models.ErrNotFound
	}
	if err != nil {
		return models.Project{}, err
	}
	if membership.Status != models.CollaboratorAccepted {
		return models.Project{}, models.ErrNotFound
	}
	project.Shared = true
	return project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id, userID string, upd ProjectUpdate) (models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if project.UserID != userID {
		return models.Project{}, models.ErrNotFound
	}

	updates := bson.M{}
	if upd.Name != nil {
		if *upd.Name == "" {
			return models.Project{}, fmt.Errorf("project name is required")
		}
		updates["name"] = *upd.Name
	}
	if upd.Color != nil {
		updates["color"] = *upd.Color
	}
	if upd.ClearFolder {
		updates["folder_id"] = nil
	} else if upd.FolderID != nil {
		if err := s.checkFolder(ctx, *upd.FolderID, userID); err != nil {
			return models.Project{}, err
		}
		updates["folder_id"] = *upd.FolderID
	}
	if len(updates) == 0 {
		return project, nil
	}

	if err := s.projects.Update(ctx, id, updates); err != nil {
		return models.Project{}, err
	}
	updated, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	s.hub.Publish(realtime.Event{Entity: realtime.EntityProject, Action: realtime.Updated, Record: updated})
	return updated, nil
}

// DeleteProject removes the project together with its tasks and
// collaborator rows.
func (s *ProjectService) DeleteProject(ctx context.Context, id, userID string) error {
	project, err := s.projects.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if project.UserID != userID {
		return models.ErrNotFound
	}

	if err := s.tasks.DeleteByProject(ctx, id); err != nil {
		return err
	}
	if err := s.collaborators.DeleteByProject(ctx, id); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Publish(realtime.Event{Entity: realtime.EntityProject, Action: realtime.Deleted, Record: project})
	return nil
}

func (s *ProjectService) CreateFolder(ctx context.Context, name, color, userID string) (models.Folder, error) {
	if name == "" {
		return models.Folder{}, fmt.Errorf("folder name is required")
	}
	folder := models.Folder{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		UserID:    userID,
		CreatedAt: nowUTC(),
	}
	if err := s.folders.Create(ctx, folder); err != nil {
		return models.Folder{}, err
	}
	s.hub.Publish(realtime.Event{Entity: realtime.EntityFolder, Action: realtime.Inserted, Record: folder})
	return folder, nil
}

func (s *ProjectService) ListFolders(ctx context.Context, userID string) ([]models.Folder, error) {
	return s.folders.ListByUser(ctx, userID)
}

// DeleteFolder reparents the folder's projects to "no folder" before
// removing the folder itself. Projects are never deleted with their
// folder.
func (s *ProjectService) DeleteFolder(ctx context.Context, id, userID string) error {
	folder, err := s.folders.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if folder.UserID != userID {
		return models.ErrNotFound
	}

	affected, err := s.projects.ListByFolder(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.projects.ClearFolder(ctx, id); err != nil {
		return err
	}
	if err := s.folders.Delete(ctx, id); err != nil {
		return err
	}

	s.hub.Publish(realtime.Event{Entity: realtime.EntityFolder, Action: realtime.Deleted, Record: folder})
	for _, project := range affected {
		project.FolderID = nil
		s.hub.Publish(realtime.Event{Entity: realtime.EntityProject, Action: realtime.Updated, Record: project})
	}
	return nil
}
