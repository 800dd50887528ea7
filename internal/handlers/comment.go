package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	"github.com/yukikurage/project-management-api/internal/services"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	comments, err := h.commentService.ListByTask(actor, c.Param("task_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCommentDTOs(comments))
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	type CreateCommentRequest struct {
		TaskID  string `json:"task_id" validate:"required"`
		Content string `json:"content" validate:"required,max=5000"`
	}

	var req CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(actor, services.CreateCommentInput{
		TaskID:  req.TaskID,
		Content: req.Content,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToCommentDTO(*comment))
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.commentService.Delete(actor, c.Param("comment_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
