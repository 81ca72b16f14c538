package dto

import "github.com/noah-isme/studyboard-api/internal/models"

// SubmissionRequest is the body of the save-draft and submit endpoints.
type SubmissionRequest struct {
	StudentID uint   `json:"student_id" validate:"required,gt=0"`
	Content   string `json:"content" validate:"max=20000"`
}

// SubmissionStatusResponse describes where a student's work on an assignment stands.
type SubmissionStatusResponse struct {
	SubmissionStatus  models.SubmissionStatus `json:"submission_status"`
	SubmissionContent string                  `json:"submission_content"`
}

// NewSubmissionStatusResponse maps a grade row, treating a missing row as not started.
func NewSubmissionStatusResponse(grade *models.Grade) SubmissionStatusResponse {
	if grade == nil {
		return SubmissionStatusResponse{SubmissionStatus: models.SubmissionNotStarted}
	}
	return SubmissionStatusResponse{
		SubmissionStatus:  grade.SubmissionStatus,
		SubmissionContent: grade.SubmissionContent,
	}
}
