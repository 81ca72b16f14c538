package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyboard-api/internal/models"
)

func TestGenerateTeacherPlanOrdersPasses(t *testing.T) {
	graded := 58.0
	atRisk := []models.StudentPrediction{
		{
			Student: models.Student{ID: 1, Name: "Ada"},
			Prediction: models.Prediction{
				RiskLevel: models.RiskHigh,
				AtRiskSubjects: []models.AtRiskSubject{
					{Assignment: "Essay", Subject: "English"},
					{Assignment: "Quiz", Subject: "Math", Grade: &graded},
				},
			},
		},
		{
			Student:    models.Student{ID: 2, Name: "Ben"},
			Prediction: models.Prediction{RiskLevel: models.RiskMedium, Declining: true},
		},
		{
			Student: models.Student{ID: 3, Name: "Cy"},
			Prediction: models.Prediction{
				RiskLevel:      models.RiskMedium,
				AtRiskSubjects: []models.AtRiskSubject{{Assignment: "Lab", Subject: "Science"}},
			},
		},
	}

	plan := GenerateTeacherPlan(atRisk, planNow)

	type row struct {
		text     string
		category TaskCategory
		offset   int
	}
	want := []row{
		{"Grade Essay for Ada", TaskCategoryGrading, 1},
		{"Grade Lab for Cy", TaskCategoryGrading, 1},
		{"Send encouraging feedback to Ada", TaskCategoryMessages, 2},
		{"Schedule check-in with Ada", TaskCategoryScheduling, 3},
		{"Schedule check-in with Ben", TaskCategoryScheduling, 3},
	}
	require.Len(t, plan, len(want))
	for i, expected := range want {
		require.Equal(t, expected.text, plan[i].Text)
		require.Equal(t, expected.category, plan[i].Category)
		require.Equal(t, planNow.AddDate(0, 0, expected.offset), plan[i].DueDate)
	}
}

func TestGenerateTeacherPlanEmpty(t *testing.T) {
	require.Empty(t, GenerateTeacherPlan(nil, planNow))
}

func TestComposeFeedbackTemplates(t *testing.T) {
	score := func(v float64) *float64 { return &v }

	require.Contains(t, ComposeFeedback("Essay", score(45)), "having difficulty with Essay")
	require.Contains(t, ComposeFeedback("Essay", score(0)), "having difficulty with Essay")
	require.Contains(t, ComposeFeedback("Essay", score(60)), "making progress on Essay")
	require.Contains(t, ComposeFeedback("Essay", score(75)), "Good effort on Essay")
	require.Contains(t, ComposeFeedback("Essay", nil), "Good effort on Essay")
}

func TestGenerateTeacherPlanIDsSurviveDroppedTasks(t *testing.T) {
	atRisk := func(aliceQuiz *float64) []models.StudentPrediction {
		return []models.StudentPrediction{
			{
				Student: models.Student{ID: 1, Name: "Alice"},
				Prediction: models.Prediction{
					RiskLevel:      models.RiskHigh,
					AtRiskSubjects: []models.AtRiskSubject{{Assignment: "Quiz", Grade: aliceQuiz}},
				},
			},
			{
				Student: models.Student{ID: 2, Name: "Bob"},
				Prediction: models.Prediction{
					RiskLevel:      models.RiskHigh,
					AtRiskSubjects: []models.AtRiskSubject{{Assignment: "Quiz"}},
				},
			},
		}
	}

	before := GenerateTeacherPlan(atRisk(nil), planNow)
	graded := 81.0
	after := GenerateTeacherPlan(atRisk(&graded), planNow)
	require.Len(t, after, len(before)-1)

	byID := make(map[TaskID]string, len(before))
	for _, task := range before {
		byID[task.ID] = task.Text
	}
	for _, task := range after {
		text, ok := byID[task.ID]
		require.True(t, ok, "task %q changed id", task.Text)
		require.Equal(t, text, task.Text)
	}
}
