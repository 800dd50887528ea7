package services

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
)

// GanttItem is one row of the timeline view. Dependencies is reserved and
// always empty.
type GanttItem struct {
	ID           string
	Name         string
	Start        time.Time
	End          time.Time
	Progress     float64
	ParentID     *string
	Dependencies []string
}

// GanttService projects a project's task tree onto a timeline.
type GanttService struct {
	tasks *TaskService
}

func NewGanttService(tasks *TaskService) *GanttService {
	return &GanttService{tasks: tasks}
}

// Project returns the project's tasks flattened depth first, parents before
// their subtasks.
func (s *GanttService) Project(actor *models.User, projectID string) ([]GanttItem, error) {
	forest, err := s.tasks.ListByProject(actor, projectID)
	if err != nil {
		return nil, err
	}
	return FlattenGantt(forest), nil
}

// FlattenGantt walks the forest depth first. Sibling order is preserved.
func FlattenGantt(forest []*TaskNode) []GanttItem {
	items := []GanttItem{}
	var walk func(nodes []*TaskNode)
	walk = func(nodes []*TaskNode) {
		for _, n := range nodes {
			items = append(items, GanttItem{
				ID:           n.ID,
				Name:         n.Name,
				Start:        n.StartDate,
				End:          n.Deadline,
				Progress:     Progress(n.Status),
				ParentID:     n.ParentTaskID,
				Dependencies: []string{},
			})
			walk(n.Subtasks)
		}
	}
	walk(forest)
	return items
}

// Progress maps a status onto the coarse three-point scale of the timeline.
func Progress(status models.Status) float64 {
	switch status {
	case models.StatusCompleted:
		return 1.0
	case models.StatusInProgress:
		return 0.5
	default:
		return 0.0
	}
}
