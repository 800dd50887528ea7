package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	"github.com/yukikurage/project-management-api/internal/services"
)

type GanttHandler struct {
	ganttService *services.GanttService
}

func NewGanttHandler(ganttService *services.GanttService) *GanttHandler {
	return &GanttHandler{ganttService: ganttService}
}

// GetGantt returns the project's tasks flattened into timeline rows.
func (h *GanttHandler) GetGantt(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.ganttService.Project(actor, c.Param("project_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToGanttItemDTOs(items))
}
