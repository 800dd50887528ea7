package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// ProjectHandler serves projects and their membership sub-resource.
type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// ListProjects returns all projects for admins and member projects otherwise.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	projects, total, err := h.projectService.List(actor, params.Offset, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Projects:   dto.ToProjectDTOs(projects),
		Pagination: paginated(params, total),
	})
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	type CreateProjectRequest struct {
		Name        string         `json:"name" validate:"required,max=255"`
		Description string         `json:"description"`
		StartDate   *dto.Timestamp `json:"start_date" validate:"required"`
		Deadline    *dto.Timestamp `json:"deadline" validate:"required"`
	}

	var req CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(actor, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate.Value(),
		Deadline:    req.Deadline.Value(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	project, err := h.projectService.Get(actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject serves both PUT and PATCH as a partial update.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Name        *string        `json:"name" validate:"omitempty,max=255"`
		Description *string        `json:"description"`
		StartDate   *dto.Timestamp `json:"start_date"`
		Deadline    *dto.Timestamp `json:"deadline"`
		Status      *models.Status `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	}

	var req UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Update(actor, c.Param("id"), services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate.Ptr(),
		Deadline:    req.Deadline.Ptr(),
		Status:      req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

func (h *ProjectHandler) ListMembers(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	members, err := h.projectService.ListMembers(actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectMemberDTOs(members))
}

func (h *ProjectHandler) AddMember(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID string             `json:"user_id" validate:"required"`
		Role   models.ProjectRole `json:"role" validate:"omitempty,oneof=project_manager project_member"`
	}

	var req AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.projectService.AddMember(actor, c.Param("id"), services.AddMemberInput{
		UserID: req.UserID,
		Role:   req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProjectMemberDTO(*member))
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(actor, c.Param("id"), c.Param("user_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}
