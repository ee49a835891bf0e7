package models

import "time"

type Folder struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Color     string    `bson:"color" json:"color"`
	UserID    string    `bson:"user_id" json:"userId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

func (f Folder) RecordID() string { return f.ID }
