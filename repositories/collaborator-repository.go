package repositories

import (
	"context"
	"fmt"

	"taskboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CollaboratorRepo struct {
	collection *mongo.Collection
}

func NewCollaboratorRepo(db *mongo.Database) *CollaboratorRepo {
	return &CollaboratorRepo{collection: db.Collection("collaborators")}
}

// EnsureIndexes creates the unique index guaranteeing at most one
// collaborator row per (project, user) pair, closing the race between
// two simultaneous invites.
func (r *CollaboratorRepo) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create unique index on collaborators: %w", err)
	}
	return nil
}

func (r *CollaboratorRepo) Create(ctx context.Context, collaborator models.Collaborator) error {
	_, err := r.collection.InsertOne(ctx, collaborator)
	if mongo.IsDuplicateKeyError(err) {
		return &models.DuplicateInviteError{Status: models.CollaboratorPending}
	}
	if err != nil {
		return fmt.Errorf("failed to create collaborator: %w", err)
	}
	return nil
}

func (r *CollaboratorRepo) GetByProjectAndUser(ctx context.Context, projectID, userID string) (models.Collaborator, error) {
	var collaborator models.Collaborator
	err := r.collection.FindOne(ctx, bson.M{"project_id": projectID, "user_id": userID}).Decode(&collaborator)
	if err == mongo.ErrNoDocuments {
		return models.Collaborator{}, models.ErrNotFound
	}
	if err != nil {
		return models.Collaborator{}, fmt.Errorf("error fetching collaborator: %w", err)
	}
	return collaborator, nil
}

func (r *CollaboratorRepo) ListByUserAndStatus(ctx context.Context, userID string, status models.CollaboratorStatus) ([]models.Collaborator, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID, "status": status})
	if err != nil {
		return nil, fmt.Errorf("error fetching collaborators: %w", err)
	}
	defer cursor.Close(ctx)

	var collaborators []models.Collaborator
	if err := cursor.All(ctx, &collaborators); err != nil {
		return nil, fmt.Errorf("error decoding collaborators: %w", err)
	}
	return collaborators, nil
}

// UpdateStatus moves the (project, user) row from one status to
// another, returning how many rows matched. Zero means no row was in
// the source status.
func (r *CollaboratorRepo) UpdateStatus(ctx context.Context, projectID, userID string, from, to models.CollaboratorStatus) (int64, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"project_id": projectID, "user_id": userID, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update collaborator status: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *CollaboratorRepo) Delete(ctx context.Context, projectID, userID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"project_id": projectID, "user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete collaborator: %w", err)
	}
	return nil
}

func (r *CollaboratorRepo) DeleteByProject(ctx context.Context, projectID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"project_id": projectID}); err != nil {
		return fmt.Errorf("failed to delete project collaborators: %w", err)
	}
	return nil
}
