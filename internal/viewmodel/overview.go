package viewmodel

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// AlertSeverity picks the styling of the performance alert.
type AlertSeverity string

const (
	AlertDanger  AlertSeverity = "danger"
	AlertWarning AlertSeverity = "warning"
)

// Alert is the performance warning shown to at-risk students.
type Alert struct {
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// BuildAlert returns nil for tiers that need no warning.
func BuildAlert(tier models.RiskLevel, decline Decline) *Alert {
	var alert Alert
	switch tier {
	case models.RiskHigh:
		alert = Alert{Severity: AlertDanger, Message: "Your performance has declined significantly."}
	case models.RiskMedium:
		alert = Alert{Severity: AlertWarning, Message: "Your performance shows some decline."}
	default:
		return nil
	}

	if decline.Declining {
		alert.Message += fmt.Sprintf(" Your grades have decreased by %.1f%% this week.", decline.Percentage*100)
	}
	return &alert
}

// OverviewInput carries everything the student overview is derived from.
type OverviewInput struct {
	Assignments []models.AssignmentWithGrade
	Prediction  *models.Prediction
	Latest      *models.PerformanceSample
	Completed   CompletedSet
	Sort        TaskSort
}

// StudentOverview is the render-ready student landing page.
type StudentOverview struct {
	RiskLevel       models.RiskLevel             `json:"risk_level"`
	AverageGrade    float64                      `json:"average_grade"`
	CompletionRate  float64                      `json:"completion_rate"`
	Quote           string                       `json:"quote"`
	Alert           *Alert                       `json:"alert"`
	StudyPlan       TaskBoard                    `json:"study_plan"`
	PoorAssignments []models.AssignmentWithGrade `json:"poor_assignments"`
	AtRiskSubjects  []models.AtRiskSubject       `json:"at_risk_subjects"`
	StudyTips       map[string][]string          `json:"study_tips"`
}

// BuildStudentOverview derives the whole overview in one pass against a single now.
func BuildStudentOverview(input OverviewInput, rng *rand.Rand, now time.Time) StudentOverview {
	tier := ClassifyRisk(input.Latest, input.Prediction)
	avg := AverageScore(input.Assignments)
	poor := PoorAssignments(input.Assignments)

	var completion float64
	decline := Decline{}
	subjects := []models.AtRiskSubject{}
	tips := map[string][]string{}
	if input.Prediction != nil {
		completion = input.Prediction.CurrentPerformance.CompletionRate
		decline = Decline{Declining: input.Prediction.Declining, Percentage: input.Prediction.DeclinePercentage}
		if input.Prediction.AtRiskSubjects != nil {
			subjects = input.Prediction.AtRiskSubjects
		}
		if input.Prediction.StudyTips != nil {
			tips = input.Prediction.StudyTips
		}
	}

	plan := GenerateStudyPlan(avg, completion, poor, now)

	return StudentOverview{
		RiskLevel:       tier,
		AverageGrade:    avg,
		CompletionRate:  completion,
		Quote:           SelectQuote(avg, tier, rng),
		Alert:           BuildAlert(tier, decline),
		StudyPlan:       PartitionTasks(plan, input.Completed, input.Sort),
		PoorAssignments: poor,
		AtRiskSubjects:  subjects,
		StudyTips:       tips,
	}
}
