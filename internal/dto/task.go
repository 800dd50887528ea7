package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

// TaskDTO represents a task in flat list responses
type TaskDTO struct {
	ID           string        `json:"id"`
	ProjectID    string        `json:"project_id"`
	ParentTaskID *string       `json:"parent_task_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	StartDate    time.Time     `json:"start_date"`
	Deadline     time.Time     `json:"deadline"`
	AssignedToID *string       `json:"assigned_to_id"`
	CreatedByID  string        `json:"created_by_id"`
	Status       models.Status `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// TaskTreeDTO is a task with nested subtasks
type TaskTreeDTO struct {
	TaskDTO
	Subtasks []TaskTreeDTO `json:"subtasks"`
}

// GanttItemDTO is one row of the timeline view
type GanttItemDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Progress     float64   `json:"progress"`
	ParentID     *string   `json:"parent_id"`
	Dependencies []string  `json:"dependencies"`
}

func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:           task.ID,
		ProjectID:    task.ProjectID,
		ParentTaskID: task.ParentTaskID,
		Name:         task.Name,
		Description:  task.Description,
		StartDate:    task.StartDate,
		Deadline:     task.Deadline,
		AssignedToID: task.AssignedToID,
		CreatedByID:  task.CreatedByID,
		Status:       task.Status,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToTaskDTO(t))
	}
	return out
}

func ToTaskTreeDTO(node *services.TaskNode) TaskTreeDTO {
	return TaskTreeDTO{
		TaskDTO:  ToTaskDTO(node.Task),
		Subtasks: ToTaskTreeDTOs(node.Subtasks),
	}
}

func ToTaskTreeDTOs(nodes []*services.TaskNode) []TaskTreeDTO {
	out := make([]TaskTreeDTO, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, ToTaskTreeDTO(n))
	}
	return out
}

func ToGanttItemDTOs(items []services.GanttItem) []GanttItemDTO {
	out := make([]GanttItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, GanttItemDTO{
			ID:           item.ID,
			Name:         item.Name,
			Start:        item.Start,
			End:          item.End,
			Progress:     item.Progress,
			ParentID:     item.ParentID,
			Dependencies: item.Dependencies,
		})
	}
	return out
}
