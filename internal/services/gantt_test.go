package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/models"
)

func TestFlattenGantt_DepthFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := "a"
	tasks := []models.Task{
		{ID: "a", Name: "A", StartDate: base, Status: models.StatusCompleted},
		{ID: "b", Name: "B", StartDate: base.Add(24 * time.Hour), Status: models.StatusPending},
		{ID: "a1", Name: "A1", ParentTaskID: &a, StartDate: base.Add(48 * time.Hour), Status: models.StatusInProgress},
	}

	items := FlattenGantt(newTaskIndex(tasks).forest())

	require.Len(t, items, 3)
	assert.Equal(t, []string{"a", "a1", "b"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, 1.0, items[0].Progress)
	assert.Equal(t, 0.5, items[1].Progress)
	assert.Equal(t, 0.0, items[2].Progress)
	assert.Equal(t, &a, items[1].ParentID)
	assert.Nil(t, items[0].ParentID)
	assert.NotNil(t, items[0].Dependencies)
	assert.Empty(t, items[0].Dependencies)
}

func TestTaskIndex_CycleSafe(t *testing.T) {
	x, y := "x", "y"
	tasks := []models.Task{
		{ID: "x", ParentTaskID: &y},
		{ID: "y", ParentTaskID: &x},
	}
	idx := newTaskIndex(tasks)

	assert.Empty(t, idx.forest())
	assert.Len(t, idx.descendants("x"), 1)

	node, ok := idx.tree("x")
	require.True(t, ok)
	require.Len(t, node.Subtasks, 1)
	assert.Empty(t, node.Subtasks[0].Subtasks)
}

func (s *serviceSuite) TestGanttProjection() {
	project := s.newProject("Apollo")
	parent := s.newTask(s.admin, project.ID, nil, "Parent")
	s.newTask(s.admin, project.ID, &parent.ID, "Child")

	items, err := s.svc.Gantt.Project(s.member, project.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("Parent", items[0].Name)
	s.Equal(&parent.ID, items[1].ParentID)

	_, err = s.svc.Gantt.Project(s.outsider, project.ID)
	s.ErrorIs(err, ErrForbidden)
}
