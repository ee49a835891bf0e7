package models

import "time"

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

// ValidStatus reports whether s is one of the three known statuses.
// Transitions between statuses are unconstrained.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Task struct {
	ID          string     `bson:"_id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Status      TaskStatus `bson:"status" json:"status"`
	DueDate     *time.Time `bson:"due_date" json:"dueDate"`
	ProjectID   *string    `bson:"project_id" json:"projectId"`
	UserID      string     `bson:"user_id" json:"userId"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
}

func (t Task) RecordID() string { return t.ID }
