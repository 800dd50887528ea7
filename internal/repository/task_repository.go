package repository

import (
	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormTaskRepository) ListByProject(projectID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.ordered(r.db.Where("project_id = ?", projectID)).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTaskRepository) ListForUser(userID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.ordered(r.db.Where("assigned_to_id = ? OR created_by_id = ?", userID, userID)).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTaskRepository) ListAll() ([]models.Task, error) {
	var tasks []models.Task
	if err := r.ordered(r.db).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTaskRepository) ordered(query *gorm.DB) *gorm.DB {
	return query.Order("start_date ASC").Order("created_at ASC").Order("id ASC")
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes the tasks and their comments in a transaction
func (r *GormTaskRepository) Delete(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Where("id IN ?", ids).Delete(&models.Task{}).Error
	})
}
