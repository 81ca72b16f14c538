package viewmodel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskCategory groups synthesized tasks on the teacher board.
type TaskCategory string

const (
	TaskCategoryNone       TaskCategory = "none"
	TaskCategoryGrading    TaskCategory = "grading"
	TaskCategoryMessages   TaskCategory = "messages"
	TaskCategoryScheduling TaskCategory = "scheduling"
)

// TaskID is a stable synthetic identifier assigned when a task is generated.
type TaskID string

// Task is a synthesized checklist entry. Tasks are rebuilt on every pass and never persisted.
type Task struct {
	ID       TaskID       `json:"id"`
	Text     string       `json:"text"`
	Category TaskCategory `json:"category"`
	DueDate  time.Time    `json:"due_date"`
}

var taskNamespace = uuid.MustParse("5b0c4a44-6f0e-4c55-9a53-4b1f4e2f7d10")

// NewTaskID hashes category, day offset, subject and the index among tasks sharing
// those three into a UUIDv5. Dropping one task leaves every other ID unchanged.
func NewTaskID(category TaskCategory, offsetDays int, subject string, index int) TaskID {
	name := fmt.Sprintf("%s|%d|%s|%d", category, offsetDays, subject, index)
	return TaskID(uuid.NewSHA1(taskNamespace, []byte(name)).String())
}

type taskSpec struct {
	text     string
	category TaskCategory
	offset   int
	// subject names who or what the task is about; empty for study-plan rules.
	subject  string
}

func buildTasks(specs []taskSpec, now time.Time) []Task {
	tasks := make([]Task, 0, len(specs))
	seen := make(map[string]int, len(specs))
	for _, spec := range specs {
		slot := fmt.Sprintf("%s|%d|%s", spec.category, spec.offset, spec.subject)
		index := seen[slot]
		seen[slot] = index + 1

		tasks = append(tasks, Task{
			ID:       NewTaskID(spec.category, spec.offset, spec.subject, index),
			Text:     spec.text,
			Category: spec.category,
			DueDate:  now.AddDate(0, 0, spec.offset),
		})
	}
	return tasks
}
