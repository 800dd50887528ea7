package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListTasks returns the top-level tasks of ?project_id= with subtasks nested.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	projectID := c.Query("project_id")
	if projectID == "" {
		apierrors.BadRequest(c, "project_id is required")
		return
	}

	forest, err := h.taskService.ListByProject(actor, projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskTreeDTOs(forest))
}

// ListMyTasks returns a flat list of tasks assigned to or created by the caller.
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListMine(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	node, err := h.taskService.Get(actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskTreeDTO(node))
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		ProjectID    string         `json:"project_id" validate:"required"`
		ParentTaskID *string        `json:"parent_task_id"`
		Name         string         `json:"name" validate:"required,max=255"`
		Description  string         `json:"description"`
		StartDate    *dto.Timestamp `json:"start_date" validate:"required"`
		Deadline     *dto.Timestamp `json:"deadline" validate:"required"`
		AssignedToID *string        `json:"assigned_to_id"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Create(actor, services.CreateTaskInput{
		ProjectID:    req.ProjectID,
		ParentTaskID: req.ParentTaskID,
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    req.StartDate.Value(),
		Deadline:     req.Deadline.Value(),
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask serves both PUT and PATCH as a partial update.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Name         *string        `json:"name" validate:"omitempty,max=255"`
		Description  *string        `json:"description"`
		ProjectID    *string        `json:"project_id"`
		StartDate    *dto.Timestamp `json:"start_date"`
		Deadline     *dto.Timestamp `json:"deadline"`
		Status       *models.Status `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
		AssignedToID *string        `json:"assigned_to_id"`
	}

	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Update(actor, c.Param("id"), services.UpdateTaskInput{
		Name:         req.Name,
		Description:  req.Description,
		ProjectID:    req.ProjectID,
		StartDate:    req.StartDate.Ptr(),
		Deadline:     req.Deadline.Ptr(),
		Status:       req.Status,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes the task, its subtasks and their comments.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
