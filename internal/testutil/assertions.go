package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/xclgen/internal/plan"
)

// TaskByID returns the task with the given ID or fails the test.
func TaskByID(t *testing.T, doc *plan.Document, id string) plan.TaskView {
	t.Helper()
	for _, task := range doc.Tasks {
		if task.ID == id {
			return task
		}
	}
	require.Failf(t, "task not found", "no task %q in plan %v", id, TaskIDs(doc))
	return plan.TaskView{}
}

// TaskIDs lists the task IDs of a plan in order.
func TaskIDs(doc *plan.Document) []string {
	ids := make([]string, len(doc.Tasks))
	for i, task := range doc.Tasks {
		ids[i] = task.ID
	}
	return ids
}

// IndexOf returns the position of id in the plan, or -1.
func IndexOf(doc *plan.Document, id string) int {
	for i, task := range doc.Tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}
