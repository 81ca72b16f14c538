package viewmodel

import (
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// AssignmentFilter selects which assignments are listed.
type AssignmentFilter string

const (
	FilterUpcoming AssignmentFilter = "upcoming"
	FilterAll      AssignmentFilter = "all"
)

// AssignmentSort selects the list ordering.
type AssignmentSort string

const (
	SortDueDate AssignmentSort = "dueDate"
	SortSubject AssignmentSort = "subject"
)

// ParseAssignmentFilter defaults to upcoming, matching the dashboard's initial view.
func ParseAssignmentFilter(value string) AssignmentFilter {
	if strings.EqualFold(strings.TrimSpace(value), string(FilterAll)) {
		return FilterAll
	}
	return FilterUpcoming
}

// ParseAssignmentSort defaults to due date.
func ParseAssignmentSort(value string) AssignmentSort {
	if strings.EqualFold(strings.TrimSpace(value), string(SortSubject)) {
		return SortSubject
	}
	return SortDueDate
}

// FilterAndSortAssignments returns a new slice; the input order breaks ties.
func FilterAndSortAssignments(items []models.AssignmentWithGrade, filter AssignmentFilter, order AssignmentSort, now time.Time) []models.AssignmentWithGrade {
	out := make([]models.AssignmentWithGrade, 0, len(items))
	for _, item := range items {
		if filter == FilterUpcoming && !isUpcoming(item, now) {
			continue
		}
		out = append(out, item)
	}

	switch order {
	case SortSubject:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Assignment.Subject < out[j].Assignment.Subject
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Assignment.DueDate.Before(out[j].Assignment.DueDate)
		})
	}

	return out
}

// isUpcoming drops only past items the student already handed in.
func isUpcoming(item models.AssignmentWithGrade, now time.Time) bool {
	if !item.Assignment.DueDate.Before(now) {
		return true
	}
	if item.Grade == nil {
		return true
	}
	return !item.Grade.SubmissionStatus.IsResolved()
}
