package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// UserHandler serves the self-service profile and admin user management.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateMe changes the caller's name and password. Role, active flag and
// username cannot be changed here.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type UpdateMeRequest struct {
		Name            *string          `json:"name" validate:"omitempty,max=200"`
		CurrentPassword *string          `json:"current_password"`
		NewPassword     *string          `json:"new_password" validate:"omitempty,min=8"`
		Username        *json.RawMessage `json:"username"`
		Role            *json.RawMessage `json:"role"`
		IsActive        *json.RawMessage `json:"is_active"`
	}

	var req UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}
	switch {
	case req.Username != nil:
		apierrors.BadRequest(c, "username cannot be changed")
		return
	case req.Role != nil:
		apierrors.BadRequest(c, "role cannot be changed")
		return
	case req.IsActive != nil:
		apierrors.BadRequest(c, "is_active cannot be changed")
		return
	}

	updated, err := h.userService.UpdateProfile(user, services.UpdateProfileInput{
		Name:            req.Name,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*updated))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.userService.List(actor, params.Offset, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserListResponse{
		Users:      dto.ToUserDTOs(users),
		Pagination: paginated(params, total),
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// CreateUser adds an account and mails a generated password to it.
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	type CreateUserRequest struct {
		Email    string          `json:"email" validate:"required,emailish"`
		FullName string          `json:"full_name" validate:"max=200"`
		Role     models.UserRole `json:"role" validate:"omitempty,oneof=user admin"`
	}

	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(actor, services.CreateUserInput{
		Email: req.Email,
		Name:  req.FullName,
		Role:  req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Name     *string          `json:"name" validate:"omitempty,max=200"`
		Role     *models.UserRole `json:"role" validate:"omitempty,oneof=user admin"`
		IsActive *bool            `json:"is_active"`
		Password *string          `json:"password" validate:"omitempty,min=8"`
	}

	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(actor, c.Param("id"), services.UpdateUserInput{
		Name:     req.Name,
		Role:     req.Role,
		IsActive: req.IsActive,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// ResetPassword generates a new password for the user and mails it.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.userService.ResetPassword(actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "A new password has been sent to the user"})
}
