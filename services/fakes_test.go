package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"taskboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
)

// In-memory stores standing in for the Mongo and Cassandra
// repositories. They mirror the repositories' contracts: absent rows
// read as models.ErrNotFound, the collaborator store enforces one row
// per (project, user), and notifications list newest first.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

type fakeProjectStore struct {
	mu       sync.Mutex
	projects map[string]models.Project
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: make(map[string]models.Project)}
}

func (f *fakeProjectStore) Create(ctx context.Context, project models.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjectStore) GetByID(ctx context.Context, id string) (models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	project, ok := f.projects[id]
	if !ok {
		return models.Project{}, models.ErrNotFound
	}
	return project, nil
}

func (f *fakeProjectStore) ListByUser(ctx context.Context, userID string) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Project
	for _, p := range f.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjectStore) ListByFolder(ctx context.Context, folderID string) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Project
	for _, p := range f.projects {
		if p.FolderID != nil && *p.FolderID == folderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjectStore) Update(ctx context.Context, id string, updates bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	project, ok := f.projects[id]
	if !ok {
		return models.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		project.Name = v.(string)
	}
	if v, ok := updates["color"]; ok {
		project.Color = v.(string)
	}
	if v, ok := updates["folder_id"]; ok {
		if v == nil {
			project.FolderID = nil
		} else {
			id := v.(string)
			project.FolderID = &id
		}
	}
	f.projects[id] = project
	return nil
}

func (f *fakeProjectStore) ClearFolder(ctx context.Context, folderID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var cleared int64
	for id, p := range f.projects {
		if p.FolderID != nil && *p.FolderID == folderID {
			p.FolderID = nil
			f.projects[id] = p
			cleared++
		}
	}
	return cleared, nil
}

func (f *fakeProjectStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.projects, id)
	return nil
}

type fakeFolderStore struct {
	mu      sync.Mutex
	folders map[string]models.Folder
}

func newFakeFolderStore() *fakeFolderStore {
	return &fakeFolderStore{folders: make(map[string]models.Folder)}
}

func (f *fakeFolderStore) Create(ctx context.Context, folder models.Folder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folders[folder.ID] = folder
	return nil
}

func (f *fakeFolderStore) GetByID(ctx context.Context, id string) (models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	folder, ok := f.folders[id]
	if !ok {
		return models.Folder{}, models.ErrNotFound
	}
	return folder, nil
}

func (f *fakeFolderStore) ListByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Folder
	for _, folder := range f.folders {
		if folder.UserID == userID {
			out = append(out, folder)
		}
	}
	return out, nil
}

func (f *fakeFolderStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.folders, id)
	return nil
}

type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[string]models.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[string]models.Task)}
}

func (f *fakeTaskStore) Create(ctx context.Context, task models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, id string) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return models.Task{}, models.ErrNotFound
	}
	return task, nil
}

func (f *fakeTaskStore) ListByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Task
	for _, t := range f.tasks {
		if t.ProjectID != nil && *t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) ListByUser(ctx context.Context, userID string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) ListByDueRange(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Task
	for _, t := range f.tasks {
		if t.UserID != userID || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(start) || t.DueDate.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, id string, updates bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return models.ErrNotFound
	}
	if v, ok := updates["title"]; ok {
		task.Title = v.(string)
	}
	if v, ok := updates["description"]; ok {
		task.Description = v.(string)
	}
	if v, ok := updates["status"]; ok {
		task.Status = v.(models.TaskStatus)
	}
	if v, ok := updates["due_date"]; ok {
		if v == nil {
			task.DueDate = nil
		} else {
			due := v.(time.Time)
			task.DueDate = &due
		}
	}
	if v, ok := updates["project_id"]; ok {
		if v == nil {
			task.ProjectID = nil
		} else {
			pid := v.(string)
			task.ProjectID = &pid
		}
	}
	if v, ok := updates["updated_at"]; ok {
		task.UpdatedAt = v.(time.Time)
	}
	f.tasks[id] = task
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) DeleteByProject(ctx context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, t := range f.tasks {
		if t.ProjectID != nil && *t.ProjectID == projectID {
			delete(f.tasks, id)
		}
	}
	return nil
}

type collabKey struct{ projectID, userID string }

type fakeCollaboratorStore struct {
	mu   sync.Mutex
	rows map[collabKey]models.Collaborator
}

func newFakeCollaboratorStore() *fakeCollaboratorStore {
	return &fakeCollaboratorStore{rows: make(map[collabKey]models.Collaborator)}
}

func (f *fakeCollaboratorStore) Create(ctx context.Context, c models.Collaborator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := collabKey{c.ProjectID, c.UserID}
	if existing, ok := f.rows[key]; ok {
		return &models.DuplicateInviteError{Status: existing.Status}
	}
	f.rows[key] = c
	return nil
}

func (f *fakeCollaboratorStore) GetByProjectAndUser(ctx context.Context, projectID, userID string) (models.Collaborator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[collabKey{projectID, userID}]
	if !ok {
		return models.Collaborator{}, models.ErrNotFound
	}
	return c, nil
}

func (f *fakeCollaboratorStore) ListByUserAndStatus(ctx context.Context, userID string, status models.CollaboratorStatus) ([]models.Collaborator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Collaborator
	for _, c := range f.rows {
		if c.UserID == userID && c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCollaboratorStore) UpdateStatus(ctx context.Context, projectID, userID string, from, to models.CollaboratorStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := collabKey{projectID, userID}
	c, ok := f.rows[key]
	if !ok || c.Status != from {
		return 0, nil
	}
	c.Status = to
	f.rows[key] = c
	return 1, nil
}

func (f *fakeCollaboratorStore) Delete(ctx context.Context, projectID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, collabKey{projectID, userID})
	return nil
}

func (f *fakeCollaboratorStore) DeleteByProject(ctx context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.rows {
		if key.projectID == projectID {
			delete(f.rows, key)
		}
	}
	return nil
}

func (f *fakeCollaboratorStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeNotificationStore struct {
	mu    sync.Mutex
	rows  []models.Notification
	fail  error
	calls int
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{}
}

func (f *fakeNotificationStore) Create(ctx context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	f.rows = append(f.rows, n)
	sort.SliceStable(f.rows, func(i, j int) bool {
		return f.rows[i].CreatedAt.After(f.rows[j].CreatedAt)
	})
	return nil
}

func (f *fakeNotificationStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.rows {
		if n.UserID != userID {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) ListUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.rows {
		if n.UserID == userID && !n.IsRead {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, userID, id string, createdAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.rows {
		if n.UserID == userID && n.ID == id && n.CreatedAt.Equal(createdAt) {
			f.rows[i].IsRead = true
			return nil
		}
	}
	return nil
}

func (f *fakeNotificationStore) Delete(ctx context.Context, userID, id string, createdAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.rows {
		if n.UserID == userID && n.ID == id && n.CreatedAt.Equal(createdAt) {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeNotificationStore) ListReadBefore(ctx context.Context, cutoff time.Time) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.rows {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

func (f *fakeNotificationStore) byUser(userID string) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func errIsDuplicateInvite(err error) bool {
	return errors.Is(err, models.ErrDuplicateInvite)
}
