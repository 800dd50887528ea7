package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

// RequireAuth resolves the bearer token into the current user
func RequireAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			apierrors.Unauthorized(c, "Not authenticated")
			return
		}

		user, err := auth.ResolveToken(token)
		if err != nil {
			if services.KindOf(err) == services.KindAuthentication {
				apierrors.Unauthorized(c, "Could not validate credentials")
				return
			}
			apierrors.InternalError(c, "Failed to validate credentials")
			return
		}

		// Store user in context for easy access in handlers
		c.Set(constants.ContextKeyUser, user)
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyToken, token)
		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, constants.TokenType) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUser retrieves the current user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(constants.ContextKeyUserID)
	return userID, userID != ""
}
