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

const maxTitleLength = 255

// ProjectService manages projects and their memberships.
type ProjectService struct {
	store    *repository.Store
	access   *AccessControl
	announce *announcer
}

func NewProjectService(store *repository.Store, access *AccessControl, notifier notify.Notifier, log *logrus.Logger) *ProjectService {
	return &ProjectService{
		store:    store,
		access:   access,
		announce: newAnnouncer(store, notifier, log),
	}
}

// CreateProjectInput represents parameters to create a project.
type CreateProjectInput struct {
	Name        string
	Description string
	StartDate   time.Time
	Deadline    time.Time
}

// Create makes a pending project with the creator as its first manager. Admin only.
func (s *ProjectService) Create(actor *models.User, input CreateProjectInput) (*models.Project, error) {
	if !s.access.IsAdmin(actor) {
		return nil, ErrForbidden
	}

	name, err := cleanTitle(input.Name)
	if err != nil {
		return nil, err
	}
	if err := checkDates(input.StartDate, input.Deadline); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		StartDate:   input.StartDate,
		Deadline:    input.Deadline,
		Status:      models.StatusPending,
		IsActive:    true,
	}
	manager := &models.ProjectMember{UserID: actor.ID}

	if err := s.store.Projects.CreateWithManager(project, manager); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// List returns every project for admins and the member projects for everyone else.
func (s *ProjectService) List(actor *models.User, offset, limit int) ([]models.Project, int64, error) {
	var (
		projects []models.Project
		total    int64
		err      error
	)
	if s.access.IsAdmin(actor) {
		projects, total, err = s.store.Projects.List(offset, limit)
	} else {
		projects, total, err = s.store.Projects.ListForUser(actor.ID, offset, limit)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

func (s *ProjectService) Get(actor *models.User, id string) (*models.Project, error) {
	project, err := findProject(s.store, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.access.HasProjectAccess(actor, id)); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProjectInput is a partial update; nil fields are left unchanged.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	Deadline    *time.Time
	Status      *models.Status
}

// Update applies a patch. An explicit status is stored as given and may later
// be overridden by task propagation.
func (s *ProjectService) Update(actor *models.User, id string, input UpdateProjectInput) (*models.Project, error) {
	project, err := findProject(s.store, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.access.CanUpdateProject(actor, id)); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if project.Name, err = cleanTitle(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.StartDate != nil {
		project.StartDate = *input.StartDate
	}
	if input.Deadline != nil {
		project.Deadline = *input.Deadline
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		project.Status = *input.Status
	}
	if err := checkDates(project.StartDate, project.Deadline); err != nil {
		return nil, err
	}

	if err := s.store.Projects.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// Delete removes the project with its tasks, comments and memberships. Admin only.
func (s *ProjectService) Delete(actor *models.User, id string) error {
	if _, err := findProject(s.store, id); err != nil {
		return err
	}
	if !s.access.IsAdmin(actor) {
		return ErrForbidden
	}

	if err := s.store.Projects.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (s *ProjectService) ListMembers(actor *models.User, projectID string) ([]models.ProjectMember, error) {
	if _, err := findProject(s.store, projectID); err != nil {
		return nil, err
	}
	if err := authorize(s.access.HasProjectAccess(actor, projectID)); err != nil {
		return nil, err
	}

	members, err := s.store.Projects.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// AddMemberInput represents a new membership. Role defaults to project_member.
type AddMemberInput struct {
	UserID string
	Role   models.ProjectRole
}

func (s *ProjectService) AddMember(actor *models.User, projectID string, input AddMemberInput) (*models.ProjectMember, error) {
	project, err := findProject(s.store, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.access.CanManageMembers(actor, projectID)); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleProjectMember
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	member := &models.ProjectMember{ProjectID: projectID, UserID: input.UserID, Role: role}
	var user *models.User
	err = s.store.Transaction(func(tx *repository.Store) error {
		var err error
		if user, err = findUser(tx, input.UserID); err != nil {
			return err
		}

		if _, err := tx.Projects.FindMember(projectID, input.UserID); err == nil {
			return ErrAlreadyMember
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check membership: %w", err)
		}

		if err := tx.Projects.AddMember(member); err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	member.User = *user
	s.announce.notifier.Notify(notify.KindProjectAssignment, []string{user.Username}, projectDetails(project))
	return member, nil
}

// RemoveMember deletes a membership. The last project manager cannot be removed.
func (s *ProjectService) RemoveMember(actor *models.User, projectID, userID string) error {
	if _, err := findProject(s.store, projectID); err != nil {
		return err
	}
	if err := authorize(s.access.CanManageMembers(actor, projectID)); err != nil {
		return err
	}

	return s.store.Transaction(func(tx *repository.Store) error {
		member, err := tx.Projects.FindMember(projectID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("failed to find member: %w", err)
		}

		if member.Role == models.RoleProjectManager {
			managers, err := tx.Projects.CountManagers(projectID)
			if err != nil {
				return fmt.Errorf("failed to count managers: %w", err)
			}
			if managers <= 1 {
				return ErrLastManager
			}
		}

		if err := tx.Projects.RemoveMember(projectID, userID); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		return nil
	})
}

func cleanTitle(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name is required")
	}
	if len(name) > maxTitleLength {
		return "", invalid("name must be at most %d characters", maxTitleLength)
	}
	return name, nil
}

func checkDates(start, deadline time.Time) error {
	if start.IsZero() || deadline.IsZero() {
		return invalid("start_date and deadline are required")
	}
	if deadline.Before(start) {
		return invalid("deadline must not be before start_date")
	}
	return nil
}
