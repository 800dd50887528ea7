package services

import (
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/notify"
)

func (s *serviceSuite) TestAdminOnlyUserOperations() {
	_, _, err := s.svc.Users.List(s.member, 0, 10)
	s.ErrorIs(err, ErrForbidden)
	_, err = s.svc.Users.Get(s.member, s.admin.ID)
	s.ErrorIs(err, ErrForbidden)
	_, err = s.svc.Users.Create(s.member, CreateUserInput{Email: "x@example.com"})
	s.ErrorIs(err, ErrForbidden)
	s.ErrorIs(s.svc.Users.Delete(s.member, s.outsider.ID), ErrForbidden)
	s.ErrorIs(s.svc.Users.ResetPassword(s.member, s.outsider.ID), ErrForbidden)

	users, total, err := s.svc.Users.List(s.admin, 0, 2)
	s.Require().NoError(err)
	s.EqualValues(4, total)
	s.Len(users, 2)
}

func (s *serviceSuite) TestCreateUser_MailsGeneratedPassword() {
	user, err := s.svc.Users.Create(s.admin, CreateUserInput{Email: "New@Example.com", Name: "New Person"})
	s.Require().NoError(err)
	s.Equal("new@example.com", user.Username)
	s.Equal(models.UserRoleUser, user.Role)

	s.Require().Len(s.notifier.sent, 1)
	sent := s.notifier.sent[0]
	s.Equal(notify.KindNewCredentials, sent.Kind)
	s.Equal([]string{"new@example.com"}, sent.To)
	s.Len(sent.Details.Password, 16)

	_, _, err = s.svc.Auth.Authenticate("new@example.com", sent.Details.Password)
	s.NoError(err)

	_, err = s.svc.Users.Create(s.admin, CreateUserInput{Email: "new@example.com"})
	s.ErrorIs(err, ErrUsernameTaken)
	_, err = s.svc.Users.Create(s.admin, CreateUserInput{Email: "other@example.com", Role: "root"})
	s.ErrorIs(err, ErrInvalidRole)
}

func (s *serviceSuite) TestResetPassword() {
	s.Require().NoError(s.svc.Users.ResetPassword(s.admin, s.member.ID))
	s.Require().Len(s.notifier.sent, 1)
	password := s.notifier.sent[0].Details.Password

	_, _, err := s.svc.Auth.Authenticate("member@example.com", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
	_, _, err = s.svc.Auth.Authenticate("member@example.com", password)
	s.NoError(err)

	s.ErrorIs(s.svc.Users.ResetPassword(s.admin, "missing"), ErrUserNotFound)
}

func (s *serviceSuite) TestLastActiveAdminIsProtected() {
	role := models.UserRoleUser
	_, err := s.svc.Users.Update(s.admin, s.admin.ID, UpdateUserInput{Role: &role})
	s.ErrorIs(err, ErrLastAdmin)

	_, err = s.svc.Users.Update(s.admin, s.admin.ID, UpdateUserInput{IsActive: boolPtr(false)})
	s.ErrorIs(err, ErrLastAdmin)

	s.ErrorIs(s.svc.Users.Delete(s.admin, s.admin.ID), ErrLastAdmin)

	stored, err := s.store.Users.FindByID(s.admin.ID)
	s.Require().NoError(err)
	s.Equal(models.UserRoleAdmin, stored.Role)
	s.True(stored.IsActive)

	promote := models.UserRoleAdmin
	_, err = s.svc.Users.Update(s.admin, s.manager.ID, UpdateUserInput{Role: &promote})
	s.Require().NoError(err)

	demoted, err := s.svc.Users.Update(s.admin, s.admin.ID, UpdateUserInput{Role: &role})
	s.Require().NoError(err)
	s.Equal(models.UserRoleUser, demoted.Role)
}

func (s *serviceSuite) TestDeleteUser() {
	project := s.newProject("Apollo")
	task, err := s.svc.Tasks.Create(s.admin, CreateTaskInput{ProjectID: project.ID, Name: "T", AssignedToID: &s.member.ID, StartDate: testStart, Deadline: testDeadline})
	s.Require().NoError(err)
	_, err = s.svc.Comments.Create(s.member, CreateCommentInput{TaskID: task.ID, Content: "note"})
	s.Require().NoError(err)
	_, err = s.svc.Auth.IssueToken(s.member)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Users.Delete(s.admin, s.member.ID))

	_, err = s.svc.Users.Get(s.admin, s.member.ID)
	s.ErrorIs(err, ErrUserNotFound)

	stored, err := s.store.Tasks.FindByID(task.ID)
	s.Require().NoError(err)
	s.Nil(stored.AssignedToID)

	comments, err := s.store.Comments.ListByTask(task.ID)
	s.Require().NoError(err)
	s.Len(comments, 1)

	_, err = s.store.Projects.FindMember(project.ID, s.member.ID)
	s.Error(err)
}

func (s *serviceSuite) TestDeleteUser_SoleManagerRejected() {
	project, err := s.svc.Projects.Create(s.admin, CreateProjectInput{Name: "Apollo", StartDate: testStart, Deadline: testDeadline})
	s.Require().NoError(err)
	_, err = s.svc.Projects.AddMember(s.admin, project.ID, AddMemberInput{UserID: s.manager.ID, Role: models.RoleProjectManager})
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Projects.RemoveMember(s.admin, project.ID, s.admin.ID))

	s.ErrorIs(s.svc.Users.Delete(s.admin, s.manager.ID), ErrSoleManager)
}

func (s *serviceSuite) TestUpdateProfile() {
	updated, err := s.svc.Users.UpdateProfile(s.member, UpdateProfileInput{Name: strPtr("  Member One ")})
	s.Require().NoError(err)
	s.Equal("Member One", updated.Name)

	_, err = s.svc.Users.UpdateProfile(s.member, UpdateProfileInput{NewPassword: strPtr("newpassword1")})
	s.ErrorIs(err, ErrInvalidInput)

	_, err = s.svc.Users.UpdateProfile(s.member, UpdateProfileInput{
		CurrentPassword: strPtr("password123"),
		NewPassword:     strPtr("newpassword1"),
	})
	s.Require().NoError(err)

	_, _, err = s.svc.Auth.Authenticate("member@example.com", "newpassword1")
	s.NoError(err)
}
