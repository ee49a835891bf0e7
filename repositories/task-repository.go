package repositories

import (
	"context"
	"fmt"
	"time"

	"taskboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskRepo struct {
	collection *mongo.Collection
}

func NewTaskRepo(db *mongo.Database) *TaskRepo {
	return &TaskRepo{collection: db.Collection("tasks")}
}

func (r *TaskRepo) Create(ctx context.Context, task models.Task) error {
	if _, err := r.collection.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id string) (models.Task, error) {
	var task models.Task
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return models.Task{}, models.ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("error fetching task: %w", err)
	}
	return task, nil
}

func (r *TaskRepo) ListByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	return r.list(ctx, bson.M{"project_id": projectID}, opts)
}

func (r *TaskRepo) ListByUser(ctx context.Context, userID string) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	return r.list(ctx, bson.M{"user_id": userID}, opts)
}

// ListByDueRange returns the user's tasks with a due date inside
// [start, end].
func (r *TaskRepo) ListByDueRange(ctx context.Context, userID string, start, end time.Time) ([]models.Task, error) {
	filter := bson.M{
		"user_id":  userID,
		"due_date": bson.M{"$gte": start, "$lte": end},
	}
	opts := options.Find().SetSort(bson.M{"due_date": 1})
	return r.list(ctx, filter, opts)
}

func (r *TaskRepo) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Task, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("error decoding tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepo) Update(ctx context.Context, id string, updates bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (r *TaskRepo) DeleteByProject(ctx context.Context, projectID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"project_id": projectID}); err != nil {
		return fmt.Errorf("failed to delete project tasks: %w", err)
	}
	return nil
}
