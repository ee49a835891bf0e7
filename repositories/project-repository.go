package repositories

import (
	"context"
	"fmt"

	"taskboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectRepo struct {
	collection *mongo.Collection
}

func NewProjectRepo(db *mongo.Database) *ProjectRepo {
	return &ProjectRepo{collection: db.Collection("projects")}
}

func (r *ProjectRepo) Create(ctx context.Context, project models.Project) error {
	if _, err := r.collection.InsertOne(ctx, project); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, id string) (models.Project, error) {
	var project models.Project
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return models.Project{}, models.ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("error fetching project: %w", err)
	}
	return project, nil
}

func (r *ProjectRepo) ListByUser(ctx context.Context, userID string) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching projects: %w", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("error decoding projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepo) ListByFolder(ctx context.Context, folderID string) ([]models.Project, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"folder_id": folderID})
	if err != nil {
		return nil, fmt.Errorf("error fetching projects by folder: %w", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("error decoding projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepo) Update(ctx context.Context, id string, updates bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ClearFolder detaches every project in the folder, returning the
// number of projects reparented. Projects are never deleted with
// their folder.
func (r *ProjectRepo) ClearFolder(ctx context.Context, folderID string) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"folder_id": folderID},
		bson.M{"$set": bson.M{"folder_id": nil}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to detach projects from folder: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
