package models

import "time"

// SubmissionStatus tracks where a student's work sits in the submission lifecycle.
type SubmissionStatus string

const (
	SubmissionNotStarted SubmissionStatus = "not_started"
	SubmissionInProgress SubmissionStatus = "in_progress"
	SubmissionSubmitted  SubmissionStatus = "submitted"
	SubmissionGraded     SubmissionStatus = "graded"
)

// Completion status values mirrored on the grade row.
const (
	CompletionNotStarted = "not_started"
	CompletionInProgress = "in_progress"
	CompletionCompleted  = "completed"
)

var submissionRank = map[SubmissionStatus]int{
	SubmissionNotStarted: 0,
	SubmissionInProgress: 1,
	SubmissionSubmitted:  2,
	SubmissionGraded:     3,
}

// Valid reports whether the status is part of the lifecycle.
func (s SubmissionStatus) Valid() bool {
	_, ok := submissionRank[s]
	return ok
}

// CanAdvanceTo reports whether moving from s to next keeps the lifecycle forward-only.
// Staying in place is allowed so drafts can be re-saved and graded work re-graded.
func (s SubmissionStatus) CanAdvanceTo(next SubmissionStatus) bool {
	from, okFrom := submissionRank[s]
	to, okTo := submissionRank[next]
	if !okFrom || !okTo {
		return false
	}
	return to >= from
}

// IsResolved reports whether the student has handed the work in.
func (s SubmissionStatus) IsResolved() bool {
	return s == SubmissionSubmitted || s == SubmissionGraded
}

// Grade is the single record linking a student to an assignment.
type Grade struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	StudentID         uint             `gorm:"not null;uniqueIndex:idx_grade_student_assignment" json:"student_id"`
	AssignmentID      uint             `gorm:"not null;uniqueIndex:idx_grade_student_assignment" json:"assignment_id"`
	Score             *float64         `json:"score"`
	CompletionStatus  string           `gorm:"size:32;not null;default:not_started" json:"completion_status"`
	SubmissionStatus  SubmissionStatus `gorm:"size:32;not null;default:not_started" json:"submission_status"`
	SubmissionContent string           `gorm:"type:text" json:"submission_content,omitempty"`
	SubmittedAt       *time.Time       `json:"submitted_at,omitempty"`
	CreatedAt         time.Time        `json:"-"`
	UpdatedAt         time.Time        `json:"-"`
	Assignment        Assignment       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student           Student          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// GradingQueueItem is one row of a teacher's grading queue.
type GradingQueueItem struct {
	GradeID           uint             `json:"grade_id"`
	Student           Student          `json:"student"`
	Assignment        Assignment       `json:"assignment"`
	SubmissionStatus  SubmissionStatus `json:"submission_status"`
	SubmissionContent string           `json:"submission_content,omitempty"`
	SubmittedAt       *time.Time       `json:"submitted_at,omitempty"`
	Score             *float64         `json:"score"`
}
