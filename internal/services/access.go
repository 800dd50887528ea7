package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"gorm.io/gorm"
)

// AccessControl answers every authorization question in one place. All
// predicates are read-only.
type AccessControl struct {
	projects repository.ProjectRepository
}

func NewAccessControl(projects repository.ProjectRepository) *AccessControl {
	return &AccessControl{projects: projects}
}

func (a *AccessControl) IsAdmin(user *models.User) bool {
	return user != nil && user.IsAdmin()
}

func (a *AccessControl) membership(userID, projectID string) (*models.ProjectMember, error) {
	member, err := a.projects.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	return member, nil
}

// IsProjectMember reports whether the user holds any role in the project.
func (a *AccessControl) IsProjectMember(userID, projectID string) (bool, error) {
	member, err := a.membership(userID, projectID)
	return member != nil, err
}

func (a *AccessControl) IsProjectManager(userID, projectID string) (bool, error) {
	member, err := a.membership(userID, projectID)
	if err != nil {
		return false, err
	}
	return member != nil && member.Role == models.RoleProjectManager, nil
}

// HasProjectAccess is true for admins and for any member of the project.
func (a *AccessControl) HasProjectAccess(user *models.User, projectID string) (bool, error) {
	if a.IsAdmin(user) {
		return true, nil
	}
	return a.IsProjectMember(user.ID, projectID)
}

// CanManageProject is true for admins and the project's managers. It gates
// membership changes and task creation and deletion.
func (a *AccessControl) CanManageProject(user *models.User, projectID string) (bool, error) {
	if a.IsAdmin(user) {
		return true, nil
	}
	return a.IsProjectManager(user.ID, projectID)
}

// CanUpdateProject is admin only; managers run a project's tasks and
// membership but not its own fields.
func (a *AccessControl) CanUpdateProject(user *models.User, projectID string) (bool, error) {
	return a.IsAdmin(user), nil
}

func (a *AccessControl) CanManageMembers(user *models.User, projectID string) (bool, error) {
	return a.CanManageProject(user, projectID)
}

func (a *AccessControl) CanReadTask(user *models.User, task *models.Task) (bool, error) {
	return a.HasProjectAccess(user, task.ProjectID)
}

func (a *AccessControl) CanCreateTask(user *models.User, projectID string) (bool, error) {
	return a.CanManageProject(user, projectID)
}

// CanUpdateTask additionally lets the assignee update their own task.
func (a *AccessControl) CanUpdateTask(user *models.User, task *models.Task) (bool, error) {
	if task.IsAssignedTo(user.ID) {
		return true, nil
	}
	return a.CanManageProject(user, task.ProjectID)
}

func (a *AccessControl) CanDeleteTask(user *models.User, task *models.Task) (bool, error) {
	return a.CanManageProject(user, task.ProjectID)
}

func (a *AccessControl) CanReadComments(user *models.User, task *models.Task) (bool, error) {
	return a.CanReadTask(user, task)
}

func (a *AccessControl) CanCreateComment(user *models.User, task *models.Task) (bool, error) {
	return a.CanReadTask(user, task)
}

func (a *AccessControl) CanDeleteComment(user *models.User, comment *models.Comment) bool {
	return a.IsAdmin(user) || comment.UserID == user.ID
}

// authorize turns a predicate result into ErrForbidden.
func authorize(allowed bool, err error) error {
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}
