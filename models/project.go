package models

import "time"

type Project struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Color     string    `bson:"color" json:"color"`
	FolderID  *string   `bson:"folder_id" json:"folderId"`
	UserID    string    `bson:"user_id" json:"userId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`

	// Shared is set for projects reached through an accepted
	// collaborator row rather than ownership. Not persisted.
	Shared bool `bson:"-" json:"isShared,omitempty"`
}

func (p Project) RecordID() string { return p.ID }
