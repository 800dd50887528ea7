package services

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/notify"
)

func (s *serviceSuite) TestCreateProject_PendingWithCreatorAsManager() {
	project, err := s.svc.Projects.Create(s.admin, CreateProjectInput{Name: "  Apollo  ", StartDate: testStart, Deadline: testDeadline})
	s.Require().NoError(err)

	s.Equal("Apollo", project.Name)
	s.Equal(models.StatusPending, project.Status)

	member, err := s.store.Projects.FindMember(project.ID, s.admin.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleProjectManager, member.Role)
}

func (s *serviceSuite) TestCreateProject_Rejections() {
	_, err := s.svc.Projects.Create(s.manager, CreateProjectInput{Name: "Nope", StartDate: testStart, Deadline: testDeadline})
	s.ErrorIs(err, ErrForbidden)

	_, err = s.svc.Projects.Create(s.admin, CreateProjectInput{Name: "   ", StartDate: testStart, Deadline: testDeadline})
	s.ErrorIs(err, ErrInvalidInput)

	now := time.Now()
	_, err = s.svc.Projects.Create(s.admin, CreateProjectInput{Name: "Backwards", StartDate: now, Deadline: now.Add(-time.Hour)})
	s.ErrorIs(err, ErrInvalidInput)

	_, err = s.svc.Projects.Create(s.admin, CreateProjectInput{Name: "Undated"})
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *serviceSuite) TestGetProject_Access() {
	project := s.newProject("Apollo")

	_, err := s.svc.Projects.Get(s.member, project.ID)
	s.NoError(err)

	_, err = s.svc.Projects.Get(s.outsider, project.ID)
	s.ErrorIs(err, ErrForbidden)

	_, err = s.svc.Projects.Get(s.admin, "missing")
	s.ErrorIs(err, ErrProjectNotFound)
}

func (s *serviceSuite) TestListProjects_ScopedToMembership() {
	s.newProject("Apollo")
	_, err := s.svc.Projects.Create(s.admin, CreateProjectInput{Name: "Gemini", StartDate: testStart, Deadline: testDeadline})
	s.Require().NoError(err)

	all, total, err := s.svc.Projects.List(s.admin, 0, 10)
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(all, 2)

	mine, total, err := s.svc.Projects.List(s.member, 0, 10)
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Equal("Apollo", mine[0].Name)

	none, _, err := s.svc.Projects.List(s.outsider, 0, 10)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *serviceSuite) TestUpdateProject_PartialPatch() {
	project := s.newProject("Apollo")

	updated, err := s.svc.Projects.Update(s.admin, project.ID, UpdateProjectInput{
		Description: strPtr("to the moon"),
		Status:      statusPtr(models.StatusInProgress),
	})
	s.Require().NoError(err)
	s.Equal("Apollo", updated.Name)
	s.Equal("to the moon", updated.Description)
	s.Equal(models.StatusInProgress, updated.Status)

	_, err = s.svc.Projects.Update(s.member, project.ID, UpdateProjectInput{Name: strPtr("Hijacked")})
	s.ErrorIs(err, ErrForbidden)

	_, err = s.svc.Projects.Update(s.manager, project.ID, UpdateProjectInput{Name: strPtr("Renamed")})
	s.ErrorIs(err, ErrForbidden)
	s.Equal("Apollo", s.projectName(project.ID))

	_, err = s.svc.Projects.Update(s.admin, project.ID, UpdateProjectInput{Status: statusPtr("archived")})
	s.ErrorIs(err, ErrInvalidStatus)
}

func (s *serviceSuite) TestDeleteProject_CascadesEverything() {
	project := s.newProject("Apollo")
	parent := s.newTask(s.admin, project.ID, nil, "Parent")
	s.newTask(s.admin, project.ID, &parent.ID, "Child")
	_, err := s.svc.Comments.Create(s.member, CreateCommentInput{TaskID: parent.ID, Content: "hello"})
	s.Require().NoError(err)

	s.ErrorIs(s.svc.Projects.Delete(s.manager, project.ID), ErrForbidden)
	s.Require().NoError(s.svc.Projects.Delete(s.admin, project.ID))

	tasks, err := s.store.Tasks.ListByProject(project.ID)
	s.Require().NoError(err)
	s.Empty(tasks)

	members, err := s.store.Projects.ListMembers(project.ID)
	s.Require().NoError(err)
	s.Empty(members)

	comments, err := s.store.Comments.ListByTask(parent.ID)
	s.Require().NoError(err)
	s.Empty(comments)

	_, err = s.svc.Projects.Get(s.admin, project.ID)
	s.ErrorIs(err, ErrProjectNotFound)
}

func (s *serviceSuite) TestAddMember() {
	project, err := s.svc.Projects.Create(s.admin, CreateProjectInput{Name: "Apollo", StartDate: testStart, Deadline: testDeadline})
	s.Require().NoError(err)

	member, err := s.svc.Projects.AddMember(s.admin, project.ID, AddMemberInput{UserID: s.member.ID})
	s.Require().NoError(err)
	s.Equal(models.RoleProjectMember, member.Role)
	s.Equal(s.member.Username, member.User.Username)

	s.Require().Len(s.notifier.sent, 1)
	s.Equal(notify.KindProjectAssignment, s.notifier.sent[0].Kind)
	s.Equal([]string{"member@example.com"}, s.notifier.sent[0].To)
	s.Equal("Apollo", s.notifier.sent[0].Details.ProjectName)

	_, err = s.svc.Projects.AddMember(s.admin, project.ID, AddMemberInput{UserID: s.member.ID, Role: models.RoleProjectManager})
	s.ErrorIs(err, ErrAlreadyMember)

	_, err = s.svc.Projects.AddMember(s.admin, project.ID, AddMemberInput{UserID: s.outsider.ID, Role: "owner"})
	s.ErrorIs(err, ErrInvalidRole)

	_, err = s.svc.Projects.AddMember(s.admin, project.ID, AddMemberInput{UserID: "missing"})
	s.ErrorIs(err, ErrUserNotFound)

	_, err = s.svc.Projects.AddMember(s.member, project.ID, AddMemberInput{UserID: s.outsider.ID})
	s.ErrorIs(err, ErrForbidden)
}

func (s *serviceSuite) TestRemoveMember_KeepsLastManager() {
	project, err := s.svc.Projects.Create(s.admin, CreateProjectInput{Name: "Solo", StartDate: testStart, Deadline: testDeadline})
	s.Require().NoError(err)

	s.ErrorIs(s.svc.Projects.RemoveMember(s.admin, project.ID, s.admin.ID), ErrLastManager)

	members, err := s.store.Projects.ListMembers(project.ID)
	s.Require().NoError(err)
	s.Len(members, 1)

	_, err = s.svc.Projects.AddMember(s.admin, project.ID, AddMemberInput{UserID: s.manager.ID, Role: models.RoleProjectManager})
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Projects.RemoveMember(s.manager, project.ID, s.admin.ID))

	s.ErrorIs(s.svc.Projects.RemoveMember(s.manager, project.ID, s.outsider.ID), ErrMemberNotFound)
}
