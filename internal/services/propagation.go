package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"gorm.io/gorm"
)

// transition records a project status change caused by a task write.
type transition struct {
	project *models.Project
	from    models.Status
}

func (t *transition) reopened() bool {
	return t.from == models.StatusCompleted && t.project.Status != models.StatusCompleted
}

func (t *transition) completed() bool {
	return t.project.Status == models.StatusCompleted && t.from != models.StatusCompleted
}

// propagateTaskCreated moves the project to in_progress when a task is added.
// A completed project is reopened.
func propagateTaskCreated(tx *repository.Store, projectID string) (*transition, error) {
	project, err := findProject(tx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status == models.StatusInProgress {
		return nil, nil
	}
	return setProjectStatus(tx, project, models.StatusInProgress)
}

// propagateTaskStatus recomputes the project status after a task's status
// changed to status. Must run after the task row has been written.
func propagateTaskStatus(tx *repository.Store, projectID string, status models.Status) (*transition, error) {
	project, err := findProject(tx, projectID)
	if err != nil {
		return nil, err
	}

	if status != models.StatusCompleted {
		if project.Status == models.StatusInProgress {
			return nil, nil
		}
		return setProjectStatus(tx, project, models.StatusInProgress)
	}

	tasks, err := tx.Tasks.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}

	allCompleted, anyInProgress := len(tasks) > 0, false
	for _, task := range tasks {
		switch task.Status {
		case models.StatusCompleted:
		case models.StatusInProgress:
			allCompleted, anyInProgress = false, true
		default:
			allCompleted = false
		}
	}

	switch {
	case allCompleted && project.Status != models.StatusCompleted:
		return setProjectStatus(tx, project, models.StatusCompleted)
	case anyInProgress && project.Status != models.StatusInProgress:
		return setProjectStatus(tx, project, models.StatusInProgress)
	}
	return nil, nil
}

func setProjectStatus(tx *repository.Store, project *models.Project, status models.Status) (*transition, error) {
	from := project.Status
	if err := tx.Projects.UpdateStatus(project.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}
	project.Status = status
	return &transition{project: project, from: from}, nil
}

func findProject(store *repository.Store, id string) (*models.Project, error) {
	project, err := store.Projects.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
