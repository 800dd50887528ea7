package services

import "strings"

func (s *serviceSuite) TestComments() {
	project := s.newProject("Apollo")
	task := s.newTask(s.admin, project.ID, nil, "T")

	comment, err := s.svc.Comments.Create(s.member, CreateCommentInput{TaskID: task.ID, Content: "  looks good  "})
	s.Require().NoError(err)
	s.Equal("looks good", comment.Content)
	s.Equal(s.member.ID, comment.UserID)

	comments, err := s.svc.Comments.ListByTask(s.manager, task.ID)
	s.Require().NoError(err)
	s.Len(comments, 1)

	_, err = s.svc.Comments.ListByTask(s.outsider, task.ID)
	s.ErrorIs(err, ErrForbidden)
	_, err = s.svc.Comments.Create(s.outsider, CreateCommentInput{TaskID: task.ID, Content: "hi"})
	s.ErrorIs(err, ErrForbidden)
	_, err = s.svc.Comments.Create(s.member, CreateCommentInput{TaskID: "missing", Content: "hi"})
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *serviceSuite) TestCommentLength() {
	project := s.newProject("Apollo")
	task := s.newTask(s.admin, project.ID, nil, "T")

	_, err := s.svc.Comments.Create(s.member, CreateCommentInput{TaskID: task.ID, Content: "   "})
	s.ErrorIs(err, ErrInvalidInput)

	_, err = s.svc.Comments.Create(s.member, CreateCommentInput{TaskID: task.ID, Content: strings.Repeat("a", 5001)})
	s.ErrorIs(err, ErrInvalidInput)

	_, err = s.svc.Comments.Create(s.member, CreateCommentInput{TaskID: task.ID, Content: strings.Repeat("a", 5000)})
	s.NoError(err)
}

func (s *serviceSuite) TestDeleteComment_AuthorOrAdmin() {
	project := s.newProject("Apollo")
	task := s.newTask(s.admin, project.ID, nil, "T")

	first, err := s.svc.Comments.Create(s.member, CreateCommentInput{TaskID: task.ID, Content: "one"})
	s.Require().NoError(err)
	second, err := s.svc.Comments.Create(s.member, CreateCommentInput{TaskID: task.ID, Content: "two"})
	s.Require().NoError(err)

	s.ErrorIs(s.svc.Comments.Delete(s.manager, first.ID), ErrForbidden)
	s.NoError(s.svc.Comments.Delete(s.member, first.ID))
	s.NoError(s.svc.Comments.Delete(s.admin, second.ID))
	s.ErrorIs(s.svc.Comments.Delete(s.admin, second.ID), ErrCommentNotFound)
}
