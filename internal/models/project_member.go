package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRole string

const (
	RoleProjectManager ProjectRole = "project_manager"
	RoleProjectMember  ProjectRole = "project_member"
)

func (r ProjectRole) Valid() bool {
	return r == RoleProjectManager || r == RoleProjectMember
}

type ProjectMember struct {
	ID        string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProjectID string      `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_user" json:"project_id"`
	UserID    string      `gorm:"type:varchar(36);not null;uniqueIndex:idx_project_user;index" json:"user_id"`
	Role      ProjectRole `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time   `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (m *ProjectMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
