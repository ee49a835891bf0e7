package models

import "time"

type User struct {
	ID          string    `bson:"_id" json:"id"`
	Email       string    `bson:"email" json:"email"`
	DisplayName string    `bson:"display_name" json:"displayName"`
	Password    string    `bson:"password" json:"-"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
