package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/notify"
	"github.com/yukikurage/project-management-api/internal/repository"
	"gorm.io/gorm"
)

// TaskService provides business logic for task operations.
type TaskService struct {
	store    *repository.Store
	access   *AccessControl
	announce *announcer
}

// NewTaskService creates a new TaskService.
func NewTaskService(store *repository.Store, access *AccessControl, notifier notify.Notifier, log *logrus.Logger) *TaskService {
	return &TaskService{
		store:    store,
		access:   access,
		announce: newAnnouncer(store, notifier, log),
	}
}

// CreateTaskInput represents parameters to create a task.
type CreateTaskInput struct {
	ProjectID    string
	ParentTaskID *string
	Name         string
	Description  string
	StartDate    time.Time
	Deadline     time.Time
	AssignedToID *string
}

// Create adds a task to a project and moves the project to in_progress.
func (s *TaskService) Create(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	project, err := findProject(s.store, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.access.CanCreateTask(actor, project.ID)); err != nil {
		return nil, err
	}

	name, err := cleanTitle(input.Name)
	if err != nil {
		return nil, err
	}
	if err := checkDates(input.StartDate, input.Deadline); err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:    project.ID,
		ParentTaskID: blankToNil(input.ParentTaskID),
		Name:         name,
		Description:  input.Description,
		StartDate:    input.StartDate,
		Deadline:     input.Deadline,
		AssignedToID: blankToNil(input.AssignedToID),
		CreatedByID:  actor.ID,
		Status:       models.StatusPending,
	}

	var change *transition
	err = s.store.Transaction(func(tx *repository.Store) error {
		if task.ParentTaskID != nil {
			if err := checkParent(tx, project.ID, *task.ParentTaskID); err != nil {
				return err
			}
		}
		if task.AssignedToID != nil {
			if err := checkAssignee(tx, project.ID, *task.AssignedToID); err != nil {
				return err
			}
		}

		if err := tx.Tasks.Create(task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		change, err = propagateTaskCreated(tx, project.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.announce.transition(change)
	if task.AssignedToID != nil {
		s.announce.toUser(notify.KindTaskAssignment, *task.AssignedToID, taskDetails(project, task))
	}
	return task, nil
}

// Get returns a task with its whole subtree.
func (s *TaskService) Get(actor *models.User, id string) (*TaskNode, error) {
	task, err := findTask(s.store, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.access.CanReadTask(actor, task)); err != nil {
		return nil, err
	}

	idx, err := s.projectIndex(s.store, task.ProjectID)
	if err != nil {
		return nil, err
	}
	node, ok := idx.tree(task.ID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	return node, nil
}

// ListByProject returns the top-level tasks of a project with subtasks nested.
func (s *TaskService) ListByProject(actor *models.User, projectID string) ([]*TaskNode, error) {
	if _, err := findProject(s.store, projectID); err != nil {
		return nil, err
	}
	if err := authorize(s.access.HasProjectAccess(actor, projectID)); err != nil {
		return nil, err
	}

	idx, err := s.projectIndex(s.store, projectID)
	if err != nil {
		return nil, err
	}
	return idx.forest(), nil
}

// ListMine returns a flat list of tasks assigned to or created by the actor.
// Admins get every task.
func (s *TaskService) ListMine(actor *models.User) ([]models.Task, error) {
	var (
		tasks []models.Task
		err   error
	)
	if s.access.IsAdmin(actor) {
		tasks, err = s.store.Tasks.ListAll()
	} else {
		tasks, err = s.store.Tasks.ListForUser(actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTaskInput is a partial update; nil fields are left unchanged. An empty
// AssignedToID unassigns the task.
type UpdateTaskInput struct {
	Name         *string
	Description  *string
	ProjectID    *string
	StartDate    *time.Time
	Deadline     *time.Time
	Status       *models.Status
	AssignedToID *string
}

// Update applies a patch. Completing a task requires every subtask to be
// completed first.
func (s *TaskService) Update(actor *models.User, id string, input UpdateTaskInput) (*models.Task, error) {
	task, err := findTask(s.store, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.access.CanUpdateTask(actor, task)); err != nil {
		return nil, err
	}

	if input.ProjectID != nil && *input.ProjectID != task.ProjectID {
		return nil, ErrProjectChange
	}
	if input.Name != nil {
		if task.Name, err = cleanTitle(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.StartDate != nil {
		task.StartDate = *input.StartDate
	}
	if input.Deadline != nil {
		task.Deadline = *input.Deadline
	}
	if err := checkDates(task.StartDate, task.Deadline); err != nil {
		return nil, err
	}

	previousStatus := task.Status
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	statusChanged := task.Status != previousStatus

	previousAssignee := task.AssignedToID
	if input.AssignedToID != nil {
		task.AssignedToID = blankToNil(input.AssignedToID)
	}
	reassigned := task.AssignedToID != nil &&
		(previousAssignee == nil || *previousAssignee != *task.AssignedToID)

	var (
		project *models.Project
		change  *transition
	)
	err = s.store.Transaction(func(tx *repository.Store) error {
		var err error
		if project, err = findProject(tx, task.ProjectID); err != nil {
			return err
		}

		if reassigned {
			if err := checkAssignee(tx, task.ProjectID, *task.AssignedToID); err != nil {
				return err
			}
		}

		if statusChanged && task.Status == models.StatusCompleted {
			idx, err := s.projectIndex(tx, task.ProjectID)
			if err != nil {
				return err
			}
			for _, sub := range idx.descendants(task.ID) {
				if sub.Status != models.StatusCompleted {
					return ErrIncompleteSubtasks
				}
			}
		}

		if err := tx.Tasks.Update(task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		if statusChanged {
			change, err = propagateTaskStatus(tx, task.ProjectID, task.Status)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	details := taskDetails(project, task)
	if reassigned {
		s.announce.toUser(notify.KindTaskAssignment, *task.AssignedToID, details)
	}
	if statusChanged && task.Status == models.StatusCompleted {
		details.CompletedBy = displayName(actor)
		s.announce.toManagers(notify.KindTaskCompleted, task.ProjectID, details)
	}
	s.announce.transition(change)
	return task, nil
}

// Delete removes a task, all of its descendants, and their comments.
func (s *TaskService) Delete(actor *models.User, id string) error {
	task, err := findTask(s.store, id)
	if err != nil {
		return err
	}
	if err := authorize(s.access.CanDeleteTask(actor, task)); err != nil {
		return err
	}

	return s.store.Transaction(func(tx *repository.Store) error {
		idx, err := s.projectIndex(tx, task.ProjectID)
		if err != nil {
			return err
		}

		ids := []string{task.ID}
		for _, sub := range idx.descendants(task.ID) {
			ids = append(ids, sub.ID)
		}
		if err := tx.Tasks.Delete(ids); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}

func (s *TaskService) projectIndex(store *repository.Store, projectID string) (*taskIndex, error) {
	tasks, err := store.Tasks.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}
	return newTaskIndex(tasks), nil
}

func checkParent(tx *repository.Store, projectID, parentID string) error {
	parent, err := tx.Tasks.FindByID(parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidParent
		}
		return fmt.Errorf("failed to find parent task: %w", err)
	}
	if parent.ProjectID != projectID {
		return ErrInvalidParent
	}
	return nil
}

func checkAssignee(tx *repository.Store, projectID, userID string) error {
	if _, err := tx.Projects.FindMember(projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotMember
		}
		return fmt.Errorf("failed to check assignee: %w", err)
	}
	return nil
}

func findTask(store *repository.Store, id string) (*models.Task, error) {
	task, err := store.Tasks.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func taskDetails(project *models.Project, task *models.Task) notify.Details {
	details := projectDetails(project)
	details.TaskName = task.Name
	details.TaskID = task.ID
	return details
}

func displayName(user *models.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Username
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
