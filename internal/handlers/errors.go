package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// respondServiceError maps a service error onto the HTTP error taxonomy.
func respondServiceError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindValidation:
		apierrors.BadRequest(c, err.Error())
	case services.KindAuthentication:
		apierrors.Unauthorized(c, err.Error())
	case services.KindAuthorization:
		apierrors.Forbidden(c, err.Error())
	case services.KindNotFound:
		apierrors.NotFound(c, err.Error())
	case services.KindInvariant:
		apierrors.Invariant(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}

// bindJSON decodes the body into req and runs the struct validators. It
// writes the 400 response itself and reports whether the handler may go on.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			apierrors.BadRequest(c, "Invalid request body")
			return false
		}
		apierrors.BadRequest(c, err.Error())
		return false
	}
	return validate(c, req)
}

// validate runs the struct validators and writes a 400 with per-field details
// on failure.
func validate(c *gin.Context, req interface{}) bool {
	if err := utils.ValidateStruct(req); err != nil {
		var fieldErr *utils.ValidationError
		if errors.As(err, &fieldErr) {
			apierrors.BadRequestWithDetails(c, fieldErr.Error(), fieldErr.Fields)
			return false
		}
		apierrors.BadRequest(c, err.Error())
		return false
	}
	return true
}

// bindForm is bindJSON for form-encoded bodies.
func bindForm(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		apierrors.BadRequest(c, "Invalid form body")
		return false
	}
	return validate(c, req)
}

func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return user, ok
}

func paginated(params utils.PaginationParams, total int64) utils.PaginationResponse {
	return utils.PaginationResponse{Page: params.Page, Limit: params.Limit, Total: total}
}
