package viewmodel

import (
	"strings"
	"time"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// PoorScoreThreshold marks graded work that needs improvement.
const PoorScoreThreshold = 75.0

// GenerateStudyPlan builds the student's ordered study plan. Each rule appends
// independently and the order of the rules is fixed.
func GenerateStudyPlan(avgGrade, completionRate float64, poor []models.AssignmentWithGrade, now time.Time) []Task {
	specs := make([]taskSpec, 0, 7)

	if avgGrade < MediumRiskGrade {
		specs = append(specs,
			taskSpec{text: "Review core concepts daily for 30 minutes", category: TaskCategoryNone, offset: 2},
			taskSpec{text: "Complete practice problems before attempting assignments", category: TaskCategoryNone, offset: 3},
		)
	}

	if completionRate < MediumRiskComplete {
		specs = append(specs,
			taskSpec{text: "Set reminders for assignment due dates", category: TaskCategoryNone, offset: 1},
			taskSpec{text: "Break large assignments into smaller tasks", category: TaskCategoryNone, offset: 4},
		)
	}

	if len(poor) > 0 {
		limit := len(poor)
		if limit > 2 {
			limit = 2
		}
		titles := make([]string, 0, limit)
		for _, item := range poor[:limit] {
			titles = append(titles, item.Assignment.Title)
		}
		specs = append(specs, taskSpec{
			text:     "Focus on improving in: " + strings.Join(titles, ", "),
			category: TaskCategoryNone,
			offset:   5,
		})
	}

	specs = append(specs,
		taskSpec{text: "Ask questions during office hours", category: TaskCategoryNone, offset: 7},
		taskSpec{text: "Form a study group with classmates", category: TaskCategoryNone, offset: 6},
	)

	return buildTasks(specs, now)
}

// AverageScore is the mean of all non-null scores, or 0 when nothing is graded.
func AverageScore(items []models.AssignmentWithGrade) float64 {
	var total float64
	var count int
	for _, item := range items {
		if item.Grade != nil && item.Grade.Score != nil {
			total += *item.Grade.Score
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// PoorAssignments keeps scored items below the improvement threshold, in input order.
func PoorAssignments(items []models.AssignmentWithGrade) []models.AssignmentWithGrade {
	poor := make([]models.AssignmentWithGrade, 0)
	for _, item := range items {
		if item.Grade != nil && item.Grade.Score != nil && *item.Grade.Score < PoorScoreThreshold {
			poor = append(poor, item)
		}
	}
	return poor
}
