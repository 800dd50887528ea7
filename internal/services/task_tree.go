package services

import "github.com/yukikurage/project-management-api/internal/models"

// TaskNode is a task with its subtasks resolved by parent id.
type TaskNode struct {
	models.Task
	Subtasks []*TaskNode
}

// taskIndex is a flat arena of one project's tasks with a parent -> children
// index. Lookups never follow object pointers, so malformed parent chains
// cannot loop.
type taskIndex struct {
	tasks    []models.Task
	byID     map[string]int
	children map[string][]int
}

func newTaskIndex(tasks []models.Task) *taskIndex {
	idx := &taskIndex{
		tasks:    tasks,
		byID:     make(map[string]int, len(tasks)),
		children: make(map[string][]int),
	}
	for i, t := range tasks {
		idx.byID[t.ID] = i
	}
	for i, t := range tasks {
		if t.ParentTaskID != nil {
			if _, ok := idx.byID[*t.ParentTaskID]; ok {
				idx.children[*t.ParentTaskID] = append(idx.children[*t.ParentTaskID], i)
			}
		}
	}
	return idx
}

// roots returns tasks whose parent is unset or outside the set, in input order.
func (idx *taskIndex) roots() []int {
	var out []int
	for i, t := range idx.tasks {
		if t.ParentTaskID == nil {
			out = append(out, i)
			continue
		}
		if _, ok := idx.byID[*t.ParentTaskID]; !ok {
			out = append(out, i)
		}
	}
	return out
}

func (idx *taskIndex) forest() []*TaskNode {
	seen := make(map[int]bool, len(idx.tasks))
	roots := idx.roots()
	out := make([]*TaskNode, 0, len(roots))
	for _, i := range roots {
		out = append(out, idx.node(i, seen))
	}
	return out
}

func (idx *taskIndex) tree(id string) (*TaskNode, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return idx.node(i, make(map[int]bool)), true
}

func (idx *taskIndex) node(i int, seen map[int]bool) *TaskNode {
	seen[i] = true
	n := &TaskNode{Task: idx.tasks[i], Subtasks: []*TaskNode{}}
	for _, c := range idx.children[idx.tasks[i].ID] {
		if !seen[c] {
			n.Subtasks = append(n.Subtasks, idx.node(c, seen))
		}
	}
	return n
}

// descendants returns every task below id, depth first.
func (idx *taskIndex) descendants(id string) []models.Task {
	var out []models.Task
	seen := map[string]bool{id: true}
	var walk func(string)
	walk = func(parent string) {
		for _, c := range idx.children[parent] {
			child := idx.tasks[c]
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			out = append(out, child)
			walk(child.ID)
		}
	}
	walk(id)
	return out
}
