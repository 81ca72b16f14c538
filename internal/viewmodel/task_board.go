package viewmodel

import (
	"sort"
	"strings"
)

// TaskSort selects the ordering applied to both board columns.
type TaskSort string

const (
	TaskSortGenerated TaskSort = "generated"
	TaskSortDueDate   TaskSort = "dueDate"
)

// ParseTaskSort maps a query value onto a TaskSort, defaulting to generation order.
func ParseTaskSort(value string) TaskSort {
	if strings.EqualFold(strings.TrimSpace(value), string(TaskSortDueDate)) {
		return TaskSortDueDate
	}
	return TaskSortGenerated
}

// CompletedSet holds the IDs of tasks the user ticked off.
type CompletedSet map[TaskID]struct{}

// NewCompletedSet builds a set from raw identifiers.
func NewCompletedSet(ids ...string) CompletedSet {
	set := make(CompletedSet, len(ids))
	for _, id := range ids {
		set[TaskID(id)] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s CompletedSet) Has(id TaskID) bool {
	_, ok := s[id]
	return ok
}

// ToggleTask flips the membership of id and returns a new set; the input is left untouched.
func ToggleTask(completed CompletedSet, id TaskID) CompletedSet {
	next := make(CompletedSet, len(completed)+1)
	for key := range completed {
		next[key] = struct{}{}
	}
	if completed.Has(id) {
		delete(next, id)
	} else {
		next[id] = struct{}{}
	}
	return next
}

// TaskBoard is the pending/completed split of a task list.
type TaskBoard struct {
	Pending   []Task `json:"pending"`
	Completed []Task `json:"completed"`
}

// PartitionTasks splits tasks by completion. Every task lands in exactly one column.
func PartitionTasks(tasks []Task, completed CompletedSet, order TaskSort) TaskBoard {
	board := TaskBoard{
		Pending:   make([]Task, 0, len(tasks)),
		Completed: make([]Task, 0),
	}

	for _, task := range tasks {
		if completed.Has(task.ID) {
			board.Completed = append(board.Completed, task)
		} else {
			board.Pending = append(board.Pending, task)
		}
	}

	if order == TaskSortDueDate {
		sortTasksByDueDate(board.Pending)
		sortTasksByDueDate(board.Completed)
	}

	return board
}

func sortTasksByDueDate(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
}
