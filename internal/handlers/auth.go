package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup registers a new user and returns a bearer token for it.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
		Name     string `json:"name" validate:"max=200"`
	}

	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	_, token, err := h.authService.Signup(services.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: constants.TokenType})
}

// Token implements the OAuth2 password grant with form-encoded credentials.
func (h *AuthHandler) Token(c *gin.Context) {
	type TokenRequest struct {
		Username string `form:"username" json:"username" validate:"required"`
		Password string `form:"password" json:"password" validate:"required"`
	}

	var req TokenRequest
	if !bindForm(c, &req) {
		return
	}

	_, token, err := h.authService.Authenticate(req.Username, req.Password)
	if err != nil {
		if services.KindOf(err) == services.KindAuthentication {
			apierrors.InvalidCredentials(c, "Incorrect username or password")
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: constants.TokenType})
}

// Logout revokes the presented bearer token.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	if err := h.authService.RevokeToken(token); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
