package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	StartDate   time.Time     `json:"start_date"`
	Deadline    time.Time     `json:"deadline"`
	Status      models.Status `json:"status"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ProjectListResponse represents a page of projects
type ProjectListResponse struct {
	Projects   []ProjectDTO             `json:"projects"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ProjectMemberDTO represents a membership with its user
type ProjectMemberDTO struct {
	ID        string             `json:"id"`
	ProjectID string             `json:"project_id"`
	UserID    string             `json:"user_id"`
	Role      models.ProjectRole `json:"role"`
	CreatedAt time.Time          `json:"created_at"`
	User      *UserDTO           `json:"user,omitempty"`
}

func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		StartDate:   project.StartDate,
		Deadline:    project.Deadline,
		Status:      project.Status,
		IsActive:    project.IsActive,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	out := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		out = append(out, ToProjectDTO(p))
	}
	return out
}

func ToProjectMemberDTO(member models.ProjectMember) ProjectMemberDTO {
	dto := ProjectMemberDTO{
		ID:        member.ID,
		ProjectID: member.ProjectID,
		UserID:    member.UserID,
		Role:      member.Role,
		CreatedAt: member.CreatedAt,
	}
	if member.User.ID != "" {
		user := ToUserDTO(member.User)
		dto.User = &user
	}
	return dto
}

func ToProjectMemberDTOs(members []models.ProjectMember) []ProjectMemberDTO {
	out := make([]ProjectMemberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, ToProjectMemberDTO(m))
	}
	return out
}
