package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/notify"
	"github.com/yukikurage/project-management-api/internal/repository"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Store         *repository.Store
	Notifier      notify.Notifier
	Log           *logrus.Logger
	SecretKey     string
	TokenLifetime time.Duration
}

// Services is the full set of domain services wired over one store.
type Services struct {
	Access   *AccessControl
	Auth     *AuthService
	Users    *UserService
	Projects *ProjectService
	Tasks    *TaskService
	Comments *CommentService
	Gantt    *GanttService
}

func New(deps Deps) *Services {
	access := NewAccessControl(deps.Store.Projects)
	auth := NewAuthService(deps.Store, deps.SecretKey, deps.TokenLifetime)
	tasks := NewTaskService(deps.Store, access, deps.Notifier, deps.Log)

	return &Services{
		Access:   access,
		Auth:     auth,
		Users:    NewUserService(deps.Store, access, auth, deps.Notifier, deps.Log),
		Projects: NewProjectService(deps.Store, access, deps.Notifier, deps.Log),
		Tasks:    tasks,
		Comments: NewCommentService(deps.Store, access),
		Gantt:    NewGanttService(tasks),
	}
}
