package dto

import (
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

// StudentDashboardResponse is the raw payload behind the student dashboard.
type StudentDashboardResponse struct {
	Student               models.Student               `json:"student"`
	Prediction            models.Prediction            `json:"prediction"`
	UpcomingAssignments   []models.Assignment          `json:"upcoming_assignments"`
	AssignmentsWithGrades []models.AssignmentWithGrade `json:"assignments_with_grades"`
}

// StudyPlanResponse is the student's study plan split into pending and completed tasks.
type StudyPlanResponse struct {
	Sort  viewmodel.TaskSort  `json:"sort"`
	Board viewmodel.TaskBoard `json:"board"`
}

// TaskToggleResponse reports the state of a task after a toggle.
type TaskToggleResponse struct {
	TaskID    viewmodel.TaskID    `json:"task_id"`
	Completed bool                `json:"completed"`
	Board     viewmodel.TaskBoard `json:"board"`
}

// AssignmentListItem decorates an assignment row with display hints.
type AssignmentListItem struct {
	models.AssignmentWithGrade
	Band    viewmodel.ScoreBand `json:"band"`
	PastDue bool                `json:"past_due"`
}

// AssignmentListResponse is the filtered and sorted assignment list.
type AssignmentListResponse struct {
	Filter viewmodel.AssignmentFilter `json:"filter"`
	Sort   viewmodel.AssignmentSort   `json:"sort"`
	Items  []AssignmentListItem       `json:"items"`
}

// NewAssignmentListItems decorates reduced assignment rows.
func NewAssignmentListItems(items []models.AssignmentWithGrade, pastDue func(models.Assignment) bool) []AssignmentListItem {
	result := make([]AssignmentListItem, 0, len(items))
	for _, item := range items {
		var score *float64
		if item.Grade != nil {
			score = item.Grade.Score
		}
		result = append(result, AssignmentListItem{
			AssignmentWithGrade: item,
			Band:                viewmodel.BandForScore(score),
			PastDue:             pastDue(item.Assignment),
		})
	}
	return result
}
