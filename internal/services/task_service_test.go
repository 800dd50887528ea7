package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/notify"
)

func (s *serviceSuite) TestTaskLifecycle_DrivesProjectStatus() {
	project := s.newProject("Apollo")
	s.Equal(models.StatusPending, s.projectStatus(project.ID))

	t1 := s.newTask(s.admin, project.ID, nil, "T1")
	s.Equal(models.StatusPending, t1.Status)
	s.Equal(models.StatusInProgress, s.projectStatus(project.ID))

	_, err := s.svc.Tasks.Update(s.admin, t1.ID, UpdateTaskInput{Status: statusPtr(models.StatusCompleted)})
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, s.projectStatus(project.ID))
	s.Contains(s.notifier.kinds(), notify.KindProjectCompleted)

	s.notifier.reset()
	s.newTask(s.manager, project.ID, nil, "T2")
	s.Equal(models.StatusInProgress, s.projectStatus(project.ID))
	s.Require().Len(s.notifier.sent, 1)
	reopened := s.notifier.sent[0]
	s.Equal(notify.KindProjectReopened, reopened.Kind)
	s.ElementsMatch([]string{"admin@example.com", "manager@example.com", "member@example.com"}, reopened.To)
}

func (s *serviceSuite) TestTaskStatusChange_ReopensCompletedProject() {
	project := s.newProject("Apollo")
	task := s.newTask(s.admin, project.ID, nil, "Only")

	_, err := s.svc.Tasks.Update(s.admin, task.ID, UpdateTaskInput{Status: statusPtr(models.StatusCompleted)})
	s.Require().NoError(err)
	s.notifier.reset()

	_, err = s.svc.Tasks.Update(s.admin, task.ID, UpdateTaskInput{Status: statusPtr(models.StatusPending)})
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, s.projectStatus(project.ID))
	s.Equal([]notify.Kind{notify.KindProjectReopened}, s.notifier.kinds())
}

func (s *serviceSuite) TestCompletingOneOfManyTasks_KeepsProjectInProgress() {
	project := s.newProject("Apollo")
	a := s.newTask(s.admin, project.ID, nil, "A")
	s.newTask(s.admin, project.ID, nil, "B")

	_, err := s.svc.Tasks.Update(s.admin, a.ID, UpdateTaskInput{Status: statusPtr(models.StatusCompleted)})
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, s.projectStatus(project.ID))
	s.NotContains(s.notifier.kinds(), notify.KindProjectCompleted)
}

func (s *serviceSuite) TestCompleteTask_RequiresCompletedSubtasks() {
	project := s.newProject("Apollo")
	parent := s.newTask(s.admin, project.ID, nil, "Parent")
	child := s.newTask(s.admin, project.ID, &parent.ID, "Child")
	grandchild := s.newTask(s.admin, project.ID, &child.ID, "Grandchild")

	_, err := s.svc.Tasks.Update(s.admin, parent.ID, UpdateTaskInput{Status: statusPtr(models.StatusCompleted)})
	s.ErrorIs(err, ErrIncompleteSubtasks)

	stored, err := s.store.Tasks.FindByID(parent.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, stored.Status)

	for _, id := range []string{grandchild.ID, child.ID, parent.ID} {
		_, err := s.svc.Tasks.Update(s.admin, id, UpdateTaskInput{Status: statusPtr(models.StatusCompleted)})
		s.Require().NoError(err)
	}
	s.Equal(models.StatusCompleted, s.projectStatus(project.ID))
}

func (s *serviceSuite) TestCreateTask_Validation() {
	project := s.newProject("Apollo")
	other := s.newProject("Gemini")
	foreign := s.newTask(s.admin, other.ID, nil, "Foreign")

	_, err := s.svc.Tasks.Create(s.admin, CreateTaskInput{ProjectID: project.ID, Name: "X", ParentTaskID: &foreign.ID, StartDate: testStart, Deadline: testDeadline})
	s.ErrorIs(err, ErrInvalidParent)

	_, err = s.svc.Tasks.Create(s.admin, CreateTaskInput{ProjectID: project.ID, Name: "X", ParentTaskID: strPtr("missing"), StartDate: testStart, Deadline: testDeadline})
	s.ErrorIs(err, ErrInvalidParent)

	_, err = s.svc.Tasks.Create(s.admin, CreateTaskInput{ProjectID: project.ID, Name: "X", AssignedToID: &s.outsider.ID, StartDate: testStart, Deadline: testDeadline})
	s.ErrorIs(err, ErrAssigneeNotMember)

	_, err = s.svc.Tasks.Create(s.member, CreateTaskInput{ProjectID: project.ID, Name: "X", StartDate: testStart, Deadline: testDeadline})
	s.ErrorIs(err, ErrForbidden)

	_, err = s.svc.Tasks.Create(s.admin, CreateTaskInput{ProjectID: "missing", Name: "X", StartDate: testStart, Deadline: testDeadline})
	s.ErrorIs(err, ErrProjectNotFound)

	_, err = s.svc.Tasks.Create(s.admin, CreateTaskInput{ProjectID: project.ID, Name: "Undated"})
	s.ErrorIs(err, ErrInvalidInput)

	tasks, err := s.store.Tasks.ListByProject(project.ID)
	s.Require().NoError(err)
	s.Empty(tasks)
	s.Equal(models.StatusPending, s.projectStatus(project.ID))
}

func (s *serviceSuite) TestCreateTask_NotifiesAssignee() {
	project := s.newProject("Apollo")

	task, err := s.svc.Tasks.Create(s.manager, CreateTaskInput{ProjectID: project.ID, Name: "Build", AssignedToID: &s.member.ID, StartDate: testStart, Deadline: testDeadline})
	s.Require().NoError(err)
	s.True(task.IsAssignedTo(s.member.ID))
	s.Equal(s.manager.ID, task.CreatedByID)

	var assignment *sentNotification
	for i := range s.notifier.sent {
		if s.notifier.sent[i].Kind == notify.KindTaskAssignment {
			assignment = &s.notifier.sent[i]
		}
	}
	s.Require().NotNil(assignment)
	s.Equal([]string{"member@example.com"}, assignment.To)
	s.Equal("Build", assignment.Details.TaskName)
}

func (s *serviceSuite) TestTaskAccess() {
	project := s.newProject("Apollo")
	task := s.newTask(s.admin, project.ID, nil, "Secret")

	_, err := s.svc.Tasks.Get(s.outsider, task.ID)
	s.ErrorIs(err, ErrForbidden)

	_, err = s.svc.Tasks.Get(s.member, task.ID)
	s.NoError(err)

	_, err = s.svc.Tasks.Update(s.member, task.ID, UpdateTaskInput{Name: strPtr("Mine now")})
	s.ErrorIs(err, ErrForbidden)

	s.ErrorIs(s.svc.Tasks.Delete(s.member, task.ID), ErrForbidden)

	_, err = s.svc.Tasks.Get(s.admin, "missing")
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *serviceSuite) TestAssigneeCanUpdateOwnTask() {
	project := s.newProject("Apollo")
	task, err := s.svc.Tasks.Create(s.manager, CreateTaskInput{ProjectID: project.ID, Name: "Build", AssignedToID: &s.member.ID, StartDate: testStart, Deadline: testDeadline})
	s.Require().NoError(err)
	s.notifier.reset()

	updated, err := s.svc.Tasks.Update(s.member, task.ID, UpdateTaskInput{Status: statusPtr(models.StatusCompleted)})
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, updated.Status)

	var completed *sentNotification
	for i := range s.notifier.sent {
		if s.notifier.sent[i].Kind == notify.KindTaskCompleted {
			completed = &s.notifier.sent[i]
		}
	}
	s.Require().NotNil(completed)
	s.ElementsMatch([]string{"admin@example.com", "manager@example.com"}, completed.To)
	s.Equal("member@example.com", completed.Details.CompletedBy)
}

func (s *serviceSuite) TestUpdateTask_Rejections() {
	project := s.newProject("Apollo")
	other := s.newProject("Gemini")
	task := s.newTask(s.admin, project.ID, nil, "T")

	_, err := s.svc.Tasks.Update(s.admin, task.ID, UpdateTaskInput{ProjectID: &other.ID})
	s.ErrorIs(err, ErrProjectChange)

	_, err = s.svc.Tasks.Update(s.admin, task.ID, UpdateTaskInput{Status: statusPtr("done")})
	s.ErrorIs(err, ErrInvalidStatus)

	_, err = s.svc.Tasks.Update(s.admin, task.ID, UpdateTaskInput{AssignedToID: &s.outsider.ID})
	s.ErrorIs(err, ErrAssigneeNotMember)

	updated, err := s.svc.Tasks.Update(s.admin, task.ID, UpdateTaskInput{ProjectID: &project.ID, Name: strPtr("Renamed")})
	s.Require().NoError(err)
	s.Equal("Renamed", updated.Name)
}

func (s *serviceSuite) TestUpdateTask_Unassign() {
	project := s.newProject("Apollo")
	task, err := s.svc.Tasks.Create(s.admin, CreateTaskInput{ProjectID: project.ID, Name: "T", AssignedToID: &s.member.ID, StartDate: testStart, Deadline: testDeadline})
	s.Require().NoError(err)

	updated, err := s.svc.Tasks.Update(s.admin, task.ID, UpdateTaskInput{AssignedToID: strPtr("")})
	s.Require().NoError(err)
	s.Nil(updated.AssignedToID)
}

func (s *serviceSuite) TestDeleteTask_CascadesSubtreeAndComments() {
	project := s.newProject("Apollo")
	parent := s.newTask(s.admin, project.ID, nil, "Parent")
	child := s.newTask(s.admin, project.ID, &parent.ID, "Child")
	grandchild := s.newTask(s.admin, project.ID, &child.ID, "Grandchild")
	sibling := s.newTask(s.admin, project.ID, nil, "Sibling")

	_, err := s.svc.Comments.Create(s.member, CreateCommentInput{TaskID: grandchild.ID, Content: "deep"})
	s.Require().NoError(err)
	_, err = s.svc.Comments.Create(s.member, CreateCommentInput{TaskID: sibling.ID, Content: "kept"})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Tasks.Delete(s.manager, parent.ID))

	tasks, err := s.store.Tasks.ListByProject(project.ID)
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)
	s.Equal(sibling.ID, tasks[0].ID)

	orphaned, err := s.store.Comments.ListByTask(grandchild.ID)
	s.Require().NoError(err)
	s.Empty(orphaned)

	kept, err := s.store.Comments.ListByTask(sibling.ID)
	s.Require().NoError(err)
	s.Len(kept, 1)
}

func (s *serviceSuite) TestListings() {
	project := s.newProject("Apollo")
	parent := s.newTask(s.admin, project.ID, nil, "Parent")
	child := s.newTask(s.admin, project.ID, &parent.ID, "Child")
	assigned, err := s.svc.Tasks.Create(s.manager, CreateTaskInput{ProjectID: project.ID, Name: "Assigned", AssignedToID: &s.member.ID, StartDate: testStart, Deadline: testDeadline})
	s.Require().NoError(err)

	forest, err := s.svc.Tasks.ListByProject(s.member, project.ID)
	s.Require().NoError(err)
	s.Require().Len(forest, 2)
	roots := map[string]*TaskNode{}
	for _, node := range forest {
		roots[node.ID] = node
	}
	s.Require().Contains(roots, parent.ID)
	s.Require().Len(roots[parent.ID].Subtasks, 1)
	s.Equal(child.ID, roots[parent.ID].Subtasks[0].ID)
	s.Require().Contains(roots, assigned.ID)
	s.Empty(roots[assigned.ID].Subtasks)

	tree, err := s.svc.Tasks.Get(s.member, parent.ID)
	s.Require().NoError(err)
	s.Len(tree.Subtasks, 1)

	_, err = s.svc.Tasks.ListByProject(s.outsider, project.ID)
	s.ErrorIs(err, ErrForbidden)

	mine, err := s.svc.Tasks.ListMine(s.member)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal("Assigned", mine[0].Name)

	created, err := s.svc.Tasks.ListMine(s.manager)
	s.Require().NoError(err)
	s.Len(created, 1)

	all, err := s.svc.Tasks.ListMine(s.admin)
	s.Require().NoError(err)
	s.Len(all, 3)
}

type stalledSender struct {
	release chan struct{}
	mu      sync.Mutex
	kinds   []notify.Kind
}

func (s *stalledSender) Send(ctx context.Context, msg notify.Message) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds = append(s.kinds, msg.Kind)
	return nil
}

func (s *serviceSuite) TestUpdate_DoesNotWaitForSlowTransport() {
	project := s.newProject("Apollo")
	task := s.newTask(s.admin, project.ID, nil, "Only")

	log := logrus.New()
	log.SetOutput(io.Discard)
	sender := &stalledSender{release: make(chan struct{})}
	dispatcher := notify.NewDispatcher(sender, log, time.Minute, "")
	svc := New(Deps{
		Store:         s.store,
		Notifier:      dispatcher,
		Log:           log,
		SecretKey:     "test-secret",
		TokenLifetime: time.Hour,
	})

	start := time.Now()
	_, err := svc.Tasks.Update(s.admin, task.ID, UpdateTaskInput{Status: statusPtr(models.StatusCompleted)})
	s.Require().NoError(err)
	s.Less(time.Since(start), 2*time.Second)
	s.Equal(models.StatusCompleted, s.projectStatus(project.ID))

	close(sender.release)
	dispatcher.Close()
	s.ElementsMatch([]notify.Kind{notify.KindTaskCompleted, notify.KindProjectCompleted}, sender.kinds)
}
