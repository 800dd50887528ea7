package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task rows form a tree through ParentTaskID. Subtasks are resolved by id lookup,
// never through embedded pointers.
type Task struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProjectID    string    `gorm:"type:varchar(36);not null;index" json:"project_id"`
	ParentTaskID *string   `gorm:"type:varchar(36);index" json:"parent_task_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	StartDate    time.Time `json:"start_date"`
	Deadline     time.Time `json:"deadline"`
	AssignedToID *string   `gorm:"type:varchar(36);index" json:"assigned_to_id"`
	CreatedByID  string    `gorm:"type:varchar(36);not null;index" json:"created_by_id"`
	Status       Status    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}
