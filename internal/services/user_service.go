package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/notify"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
	"gorm.io/gorm"
)

// UserService provides account administration and self-service profile updates.
type UserService struct {
	store    *repository.Store
	access   *AccessControl
	auth     *AuthService
	announce *announcer
}

func NewUserService(store *repository.Store, access *AccessControl, auth *AuthService, notifier notify.Notifier, log *logrus.Logger) *UserService {
	return &UserService{
		store:    store,
		access:   access,
		auth:     auth,
		announce: newAnnouncer(store, notifier, log),
	}
}

func (s *UserService) requireAdmin(actor *models.User) error {
	if !s.access.IsAdmin(actor) {
		return ErrForbidden
	}
	return nil
}

// List returns a page of users. Admin only.
func (s *UserService) List(actor *models.User, offset, limit int) ([]models.User, int64, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	users, total, err := s.store.Users.List(offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Get returns one user. Admin only.
func (s *UserService) Get(actor *models.User, id string) (*models.User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	return findUser(s.store, id)
}

// CreateUserInput represents an admin-created account. An empty Password makes
// the service generate one.
type CreateUserInput struct {
	Email    string
	Name     string
	Role     models.UserRole
	Password string
}

// Create adds an account and mails its credentials to the new user.
func (s *UserService) Create(actor *models.User, input CreateUserInput) (*models.User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	username := NormalizeUsername(input.Email)
	if !utils.IsEmail(username) {
		return nil, ErrInvalidEmail
	}
	name, err := cleanName(input.Name, false)
	if err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = models.UserRoleUser
	}
	if role != models.UserRoleUser && role != models.UserRoleAdmin {
		return nil, ErrInvalidRole
	}

	password := input.Password
	if password == "" {
		if password, err = utils.GeneratePassword(constants.GeneratedPasswordLength); err != nil {
			return nil, err
		}
	}

	user, err := newUser(username, password, name, role)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(func(tx *repository.Store) error {
		if err := ensureUsernameFree(tx.Users, username); err != nil {
			return err
		}
		if err := tx.Users.Create(user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendCredentials(user, password)
	return user, nil
}

// UpdateUserInput is a partial admin update; nil fields are left unchanged.
type UpdateUserInput struct {
	Name     *string
	Role     *models.UserRole
	IsActive *bool
	Password *string
}

// Update applies an admin patch. Demoting or deactivating the last active admin
// is rejected.
func (s *UserService) Update(actor *models.User, id string, input UpdateUserInput) (*models.User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.store.Transaction(func(tx *repository.Store) error {
		var err error
		if user, err = findUser(tx, id); err != nil {
			return err
		}

		if input.Name != nil {
			if user.Name, err = cleanName(*input.Name, false); err != nil {
				return err
			}
		}
		if input.Role != nil {
			if *input.Role != models.UserRoleUser && *input.Role != models.UserRoleAdmin {
				return ErrInvalidRole
			}
		}

		losesAdmin := user.IsAdmin() && user.IsActive &&
			((input.Role != nil && *input.Role != models.UserRoleAdmin) ||
				(input.IsActive != nil && !*input.IsActive))
		if losesAdmin {
			if err := ensureOtherActiveAdmin(tx, user.ID); err != nil {
				return err
			}
		}

		if input.Role != nil {
			user.Role = *input.Role
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}
		if input.Password != nil {
			if err := setPassword(user, *input.Password); err != nil {
				return err
			}
		}

		if err := tx.Users.Update(user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user with their tokens and memberships and unassigns their
// tasks. Comments are kept. The last active admin and the sole manager of a
// project cannot be deleted.
func (s *UserService) Delete(actor *models.User, id string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}

	return s.store.Transaction(func(tx *repository.Store) error {
		user, err := findUser(tx, id)
		if err != nil {
			return err
		}

		if user.IsAdmin() && user.IsActive {
			if err := ensureOtherActiveAdmin(tx, user.ID); err != nil {
				return err
			}
		}

		projectIDs, err := tx.Projects.ProjectsManagedSolelyBy(user.ID)
		if err != nil {
			return fmt.Errorf("failed to check managed projects: %w", err)
		}
		if len(projectIDs) > 0 {
			return ErrSoleManager
		}

		if err := tx.Users.Delete(user.ID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

// ResetPassword generates a new password and mails it to the user.
func (s *UserService) ResetPassword(actor *models.User, id string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}

	user, err := findUser(s.store, id)
	if err != nil {
		return err
	}
	password, err := utils.GeneratePassword(constants.GeneratedPasswordLength)
	if err != nil {
		return err
	}
	if err := s.auth.AdminSetPassword(user, password); err != nil {
		return err
	}

	s.sendCredentials(user, password)
	return nil
}

// UpdateProfileInput is a self-service patch. Changing the password requires
// the current one.
type UpdateProfileInput struct {
	Name            *string
	CurrentPassword *string
	NewPassword     *string
}

func (s *UserService) UpdateProfile(user *models.User, input UpdateProfileInput) (*models.User, error) {
	if input.Name != nil {
		name, err := cleanName(*input.Name, false)
		if err != nil {
			return nil, err
		}
		user.Name = name
	}

	if input.NewPassword != nil {
		if input.CurrentPassword == nil {
			return nil, invalid("current_password is required to change the password")
		}
		// ChangePassword persists every field of user, including the name above.
		if err := s.auth.ChangePassword(user, *input.CurrentPassword, *input.NewPassword); err != nil {
			return nil, err
		}
		return user, nil
	}

	if err := s.store.Users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *UserService) sendCredentials(user *models.User, password string) {
	s.announce.notifier.Notify(notify.KindNewCredentials, []string{user.Username}, notify.Details{
		Username: user.Username,
		Password: password,
	})
}

func ensureOtherActiveAdmin(tx *repository.Store, userID string) error {
	others, err := tx.Users.CountActiveAdmins(userID)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if others == 0 {
		return ErrLastAdmin
	}
	return nil
}

func findUser(store *repository.Store, id string) (*models.User, error) {
	user, err := store.Users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
