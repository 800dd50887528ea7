package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"gorm.io/gorm"
)

// CommentService provides business logic for task comments.
type CommentService struct {
	store  *repository.Store
	access *AccessControl
}

func NewCommentService(store *repository.Store, access *AccessControl) *CommentService {
	return &CommentService{store: store, access: access}
}

// ListByTask returns the comments on a task, oldest first.
func (s *CommentService) ListByTask(actor *models.User, taskID string) ([]models.Comment, error) {
	task, err := findTask(s.store, taskID)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.access.CanReadComments(actor, task)); err != nil {
		return nil, err
	}

	comments, err := s.store.Comments.ListByTask(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// CreateCommentInput represents a new comment.
type CreateCommentInput struct {
	TaskID  string
	Content string
}

func (s *CommentService) Create(actor *models.User, input CreateCommentInput) (*models.Comment, error) {
	task, err := findTask(s.store, input.TaskID)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.access.CanCreateComment(actor, task)); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if n := utf8.RuneCountInString(content); n < constants.MinCommentLength || n > constants.MaxCommentLength {
		return nil, invalid("content must be between %d and %d characters", constants.MinCommentLength, constants.MaxCommentLength)
	}

	comment := &models.Comment{
		TaskID:  task.ID,
		UserID:  actor.ID,
		Content: content,
	}
	if err := s.store.Comments.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// Delete removes a comment. Only its author or an admin may do so.
func (s *CommentService) Delete(actor *models.User, id string) error {
	comment, err := s.store.Comments.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to find comment: %w", err)
	}
	if !s.access.CanDeleteComment(actor, comment) {
		return ErrForbidden
	}

	if err := s.store.Comments.Delete(comment.ID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
