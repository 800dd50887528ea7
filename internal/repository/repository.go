package repository

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)


	// List returns users ordered by creation time
	List(offset, limit int) ([]models.User, int64, error)

	// Count returns the total number of users
	Count() (int64, error)

	// CountActiveAdmins counts active admins, optionally excluding one user
	CountActiveAdmins(excludeID string) (int64, error)

	// Update saves all fields of a user
	Update(user *models.User) error

	// Delete removes a user, their tokens and memberships, and unassigns their tasks
	Delete(id string) error
}

// TokenRepository defines the interface for bearer token data access
type TokenRepository interface {
	// Create stores a new token
	Create(token *models.AuthToken) error

	// FindValid finds an active, unexpired token by its digest
	FindValid(tokenHash string, now time.Time) (*models.AuthToken, error)

	// Deactivate marks a token as inactive
	Deactivate(tokenHash string) error
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// CreateWithManager creates a project and its first manager atomically
	CreateWithManager(project *models.Project, manager *models.ProjectMember) error

	// FindByID finds a project by ID
	FindByID(id string) (*models.Project, error)

	// List lists all projects
	List(offset, limit int) ([]models.Project, int64, error)

	// ListForUser lists projects the user is a member of
	ListForUser(userID string, offset, limit int) ([]models.Project, int64, error)

	// Update saves all fields of a project
	Update(project *models.Project) error

	// UpdateStatus changes only the status column
	UpdateStatus(id string, status models.Status) error

	// Delete deletes a project with its tasks, comments and members
	Delete(id string) error

	// AddMember adds a member to a project
	AddMember(member *models.ProjectMember) error

	// RemoveMember removes a member from a project
	RemoveMember(projectID, userID string) error

	// FindMember finds a specific project member
	FindMember(projectID, userID string) (*models.ProjectMember, error)

	// ListMembers lists all members of a project with their users
	ListMembers(projectID string) ([]models.ProjectMember, error)

	// CountManagers counts project managers of a project
	CountManagers(projectID string) (int64, error)

	// ProjectsManagedSolelyBy lists project IDs where userID is the only manager
	ProjectsManagedSolelyBy(userID string) ([]string, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id string) (*models.Task, error)

	// ListByProject returns every task of a project, flat
	ListByProject(projectID string) ([]models.Task, error)

	// ListForUser returns tasks assigned to or created by the user, flat
	ListForUser(userID string) ([]models.Task, error)

	// ListAll returns all tasks, flat
	ListAll() ([]models.Task, error)

	// Update saves all fields of a task
	Update(task *models.Task) error

	// Delete deletes the given tasks and their comments
	Delete(ids []string) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create creates a new comment
	Create(comment *models.Comment) error

	// FindByID finds a comment by ID
	FindByID(id string) (*models.Comment, error)

	// ListByTask lists comments on a task, oldest first
	ListByTask(taskID string) ([]models.Comment, error)

	// Delete deletes a comment
	Delete(id string) error
}

// Store bundles the repositories over one database handle so that services can
// run several repository calls inside a single transaction.
type Store struct {
	db       *gorm.DB
	Users    UserRepository
	Tokens   TokenRepository
	Projects ProjectRepository
	Tasks    TaskRepository
	Comments CommentRepository
}

// NewStore creates a Store backed by db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Tokens:   NewTokenRepository(db),
		Projects: NewProjectRepository(db),
		Tasks:    NewTaskRepository(db),
		Comments: NewCommentRepository(db),
	}
}

// Transaction runs fn with a Store bound to a database transaction. Returning
// an error from fn rolls the transaction back.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
