package repository

import (
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithManager creates the project and its manager membership in one transaction
func (r *GormProjectRepository) CreateWithManager(project *models.Project, manager *models.ProjectMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		manager.ProjectID = project.ID
		manager.Role = models.RoleProjectManager
		return tx.Create(manager).Error
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *GormProjectRepository) List(offset, limit int) ([]models.Project, int64, error) {
	return r.list(r.db.Model(&models.Project{}), offset, limit)
}

func (r *GormProjectRepository) ListForUser(userID string, offset, limit int) ([]models.Project, int64, error) {
	memberSubQuery := r.db.Model(&models.ProjectMember{}).
		Select("project_id").
		Where("user_id = ?", userID)
	return r.list(r.db.Model(&models.Project{}).Where("id IN (?)", memberSubQuery), offset, limit)
}

func (r *GormProjectRepository) list(query *gorm.DB, offset, limit int) ([]models.Project, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Scopes(database.Paginate(offset, limit)).Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

func (r *GormProjectRepository) UpdateStatus(id string, status models.Status) error {
	return r.db.Model(&models.Project{}).Where("id = ?", id).Update("status", status).Error
}

// Delete deletes a project and all related data in a transaction. Children go
// first so no row ever references a missing parent.
func (r *GormProjectRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.Project{}).Error
	})
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.Create(member).Error
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(projectID, userID string) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(projectID, userID string) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a project
func (r *GormProjectRepository) ListMembers(projectID string) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *GormProjectRepository) CountManagers(projectID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND role = ?", projectID, models.RoleProjectManager).
		Count(&count).Error
	return count, err
}

func (r *GormProjectRepository) ProjectsManagedSolelyBy(userID string) ([]string, error) {
	var projectIDs []string
	err := r.db.Model(&models.ProjectMember{}).
		Select("project_id").
		Where("role = ?", models.RoleProjectManager).
		Group("project_id").
		Having("COUNT(*) = 1 AND SUM(CASE WHEN user_id = ? THEN 1 ELSE 0 END) = 1", userID).
		Pluck("project_id", &projectIDs).Error
	return projectIDs, err
}
