package models

import "time"

type CollaboratorStatus string

const (
	CollaboratorPending  CollaboratorStatus = "pending"
	CollaboratorAccepted CollaboratorStatus = "accepted"
	CollaboratorRejected CollaboratorStatus = "rejected"
)

const RoleMember = "member"

// Collaborator is an invitation/membership row linking a user to a
// project. It is created pending by an invite and either moves to
// accepted or is deleted (declining removes the row, "rejected" is
// never persisted).
type Collaborator struct {
	ID        string             `bson:"_id" json:"id"`
	ProjectID string             `bson:"project_id" json:"projectId"`
	UserID    string             `bson:"user_id" json:"userId"`
	InvitedBy string             `bson:"invited_by" json:"invitedBy"`
	Role      string             `bson:"role" json:"role"`
	Status    CollaboratorStatus `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

func (c Collaborator) RecordID() string { return c.ID }
