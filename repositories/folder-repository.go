package repositories

import (
	"context"
	"fmt"

	"taskboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FolderRepo struct {
	collection *mongo.Collection
}

func NewFolderRepo(db *mongo.Database) *FolderRepo {
	return &FolderRepo{collection: db.Collection("folders")}
}

func (r *FolderRepo) Create(ctx context.Context, folder models.Folder) error {
	if _, err := r.collection.InsertOne(ctx, folder); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return nil
}

func (r *FolderRepo) GetByID(ctx context.Context, id string) (models.Folder, error) {
	var folder models.Folder
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&folder)
	if err == mongo.ErrNoDocuments {
		return models.Folder{}, models.ErrNotFound
	}
	if err != nil {
		return models.Folder{}, fmt.Errorf("error fetching folder: %w", err)
	}
	return folder, nil
}

func (r *FolderRepo) ListByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching folders: %w", err)
	}
	defer cursor.Close(ctx)

	var folders []models.Folder
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, fmt.Errorf("error decoding folders: %w", err)
	}
	return folders, nil
}

func (r *FolderRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}
