package models

import "time"

const NotificationTypeInvite = "invite"

// Keys used in the Data payload of invite notifications.
const (
	DataProjectID   = "project_id"
	DataProjectName = "project_name"
	DataInviterID   = "inviter_id"
	DataInviterName = "inviter_name"
)

type Notification struct {
	ID        string            `cassandra:"id" json:"id"`
	UserID    string            `cassandra:"user_id" json:"userId"`
	Type      string            `cassandra:"type" json:"type"`
	Title     string            `cassandra:"title" json:"title"`
	Message   string            `cassandra:"message" json:"message"`
	Data      map[string]string `cassandra:"data" json:"data"`
	IsRead    bool              `cassandra:"is_read" json:"isRead"`
	CreatedAt time.Time         `cassandra:"created_at" json:"createdAt"`
}

func (n Notification) RecordID() string { return n.ID }
