package services

import (
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/notify"
	"github.com/yukikurage/project-management-api/internal/repository"
)

// announcer resolves recipients and hands notifications to the notifier after
// the triggering write has committed. Nothing here returns an error.
type announcer struct {
	store    *repository.Store
	notifier notify.Notifier
	log      *logrus.Logger
}

func newAnnouncer(store *repository.Store, notifier notify.Notifier, log *logrus.Logger) *announcer {
	return &announcer{store: store, notifier: notifier, log: log}
}

func (a *announcer) toMembers(kind notify.Kind, projectID string, details notify.Details) {
	a.toProject(kind, projectID, details, false)
}

func (a *announcer) toManagers(kind notify.Kind, projectID string, details notify.Details) {
	a.toProject(kind, projectID, details, true)
}

func (a *announcer) toProject(kind notify.Kind, projectID string, details notify.Details, managersOnly bool) {
	members, err := a.store.Projects.ListMembers(projectID)
	if err != nil {
		a.log.WithError(err).WithField("project_id", projectID).Warn("Failed to resolve notification recipients")
		return
	}

	recipients := make([]string, 0, len(members))
	for _, m := range members {
		if managersOnly && m.Role != models.RoleProjectManager {
			continue
		}
		if m.User.IsActive {
			recipients = append(recipients, m.User.Username)
		}
	}
	a.notifier.Notify(kind, recipients, details)
}

func (a *announcer) toUser(kind notify.Kind, userID string, details notify.Details) {
	user, err := a.store.Users.FindByID(userID)
	if err != nil {
		a.log.WithError(err).WithField("user_id", userID).Warn("Failed to resolve notification recipient")
		return
	}
	a.notifier.Notify(kind, []string{user.Username}, details)
}

func (a *announcer) transition(t *transition) {
	if t == nil {
		return
	}

	details := projectDetails(t.project)
	switch {
	case t.reopened():
		a.toMembers(notify.KindProjectReopened, t.project.ID, details)
	case t.completed():
		a.toMembers(notify.KindProjectCompleted, t.project.ID, details)
	}
}

func projectDetails(project *models.Project) notify.Details {
	return notify.Details{ProjectName: project.Name, ProjectID: project.ID}
}
