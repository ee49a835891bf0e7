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

// TaskStore is the persistence capability for tasks.
type TaskStore interface {
	Create(ctx context.Context, task models.Task) error
	GetByID(ctx context.Context, id string) (models.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Task, error)
	ListByUser(ctx context.Context, userID string) ([]models.Task, error)
	ListByDueRange(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error)
	Update(ctx context.Context, id string, updates bson.M) error
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error
}

// TaskUpdate carries a partial task edit; nil fields are left
// untouched. Any status may move to any other status.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
	ProjectID    *string
	ClearProject bool
}

type TaskService struct {
	tasks TaskStore
	hub   *realtime.Hub
}

func NewTaskService(tasks TaskStore, hub *realtime.Hub) *TaskService {
	return &TaskService{tasks: tasks, hub: hub}
}

func (s *TaskService) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	if task.Title == "" {
		return models.Task{}, fmt.Errorf("task title is required")
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if !models.ValidStatus(task.Status) {
		return models.Task{}, fmt.Errorf("unknown task status %q", task.Status)
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := nowUTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.tasks.Create(ctx, task); err != nil {
		return models.Task{}, err
	}
	s.hub.Publish(realtime.Event{Entity: realtime.EntityTask, Action: realtime.Inserted, Record: task})
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (models.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *TaskService) ListByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *TaskService) ListForUser(ctx context.Context, userID string) ([]models.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

func (s *TaskService) ListByDueRange(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("invalid date range: end before start")
	}
	return s.tasks.ListByDueRange(ctx, userID, start, end)
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, upd TaskUpdate) (models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	updates := bson.M{}
	if upd.Title != nil {
		if *upd.Title == "" {
			return models.Task{}, fmt.Errorf("task title is required")
		}
		task.Title = *upd.Title
		updates["title"] = task.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
		updates["description"] = task.Description
	}
	if upd.Status != nil {
		if !models.ValidStatus(*upd.Status) {
			return models.Task{}, fmt.Errorf("unknown task status %q", *upd.Status)
		}
		task.Status = *upd.Status
		updates["status"] = task.Status
	}
	if upd.ClearDueDate {
		task.DueDate = nil
		updates["due_date"] = nil
	} else if upd.DueDate != nil {
		task.DueDate = upd.DueDate
		updates["due_date"] = *upd.DueDate
	}
	if upd.ClearProject {
		task.ProjectID = nil
		updates["project_id"] = nil
	} else if upd.ProjectID != nil {
		task.ProjectID = upd.ProjectID
		updates["project_id"] = *upd.ProjectID
	}
	if len(updates) == 0 {
		return task, nil
	}

	task.UpdatedAt = nowUTC()
	updates["updated_at"] = task.UpdatedAt

	if err := s.tasks.Update(ctx, id, updates); err != nil {
		return models.Task{}, err
	}
	s.hub.Publish(realtime.Event{Entity: realtime.EntityTask, Action: realtime.Updated, Record: task})
	return task, nil
}

// DeleteTask removes the task; deleting an absent task is a no-op.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	task, err := s.tasks.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	s.hub.Publish(realtime.Event{Entity: realtime.EntityTask, Action: realtime.Deleted, Record: task})
	return nil
}
