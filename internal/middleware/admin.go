package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/services"
)

// RequireAdmin rejects authenticated non-admin users with 403.
// Must run after RequireAuth.
func RequireAdmin(access *services.AccessControl) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		if !access.IsAdmin(user) {
			apierrors.Forbidden(c, "Admin privileges required")
			return
		}
		c.Next()
	}
}
