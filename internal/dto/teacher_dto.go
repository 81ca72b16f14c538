package dto

import (
	"bytes"
	"encoding/json"

	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

// TeacherDashboardResponse is the raw payload behind the teacher dashboard.
type TeacherDashboardResponse struct {
	Teacher        models.Teacher             `json:"teacher"`
	AtRiskStudents []models.StudentPrediction `json:"at_risk_students"`
	Classes        []models.ClassSummary      `json:"classes"`
}

// GradeRequest carries the raw score so numbers and numeric strings are both accepted.
type GradeRequest struct {
	Score json.RawMessage `json:"score"`
}

// RawScore returns the score as typed by the teacher. A JSON string is unquoted;
// anything else is passed through verbatim for the score parser to judge.
func (r GradeRequest) RawScore() string {
	trimmed := bytes.TrimSpace(r.Score)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err == nil {
			return text
		}
	}
	return string(trimmed)
}

// CreateGradeRequest creates a grade row for a student and assignment.
type CreateGradeRequest struct {
	StudentID        uint     `json:"student_id" validate:"required,gt=0"`
	AssignmentID     uint     `json:"assignment_id" validate:"required,gt=0"`
	Score            *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
	CompletionStatus string   `json:"completion_status" validate:"omitempty,oneof=not_started in_progress completed"`
	SubmissionStatus string   `json:"submission_status" validate:"omitempty,oneof=not_started in_progress submitted graded"`
}

// TeacherPlanResponse is the teacher's follow-up list.
type TeacherPlanResponse struct {
	Sort  viewmodel.TaskSort  `json:"sort"`
	Board viewmodel.TaskBoard `json:"board"`
}

// FeedbackResponse is the suggested message for one student and assignment.
type FeedbackResponse struct {
	StudentID  uint                `json:"student_id"`
	Assignment string              `json:"assignment"`
	Grade      *float64            `json:"grade"`
	Band       viewmodel.ScoreBand `json:"band"`
	Message    string              `json:"message"`
}
