package models

import (
	"time"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Salt         string    `gorm:"type:varchar(64);not null" json:"-"`
	Name         string    `gorm:"type:varchar(200)" json:"name"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Tokens      []AuthToken     `gorm:"foreignKey:UserID" json:"-"`
	Memberships []ProjectMember `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
