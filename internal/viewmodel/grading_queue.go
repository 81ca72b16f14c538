package viewmodel

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/studyboard-api/internal/models"
)

var (
	// ErrInvalidScore is returned when a score is not a finite number.
	ErrInvalidScore = errors.New("score must be a number")
	// ErrScoreOutOfRange is returned when a score falls outside [0, 100].
	ErrScoreOutOfRange = errors.New("score must be between 0 and 100")
)

// Score bounds accepted by ParseScore.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// ParseScore validates a raw score before anything is written.
func ParseScore(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrInvalidScore
	}
	if value < MinScore || value > MaxScore {
		return 0, ErrScoreOutOfRange
	}
	return value, nil
}

// PendingGrade is a submitted item waiting for a score.
type PendingGrade struct {
	models.GradingQueueItem
	IsLate bool `json:"is_late"`
}

// MissingSubmission is an item the student has not handed in yet.
type MissingSubmission struct {
	models.GradingQueueItem
	DaysRemaining int  `json:"days_remaining"`
	Overdue       bool `json:"overdue"`
	OverdueDays   int  `json:"overdue_days"`
}

// GradingQueue is the teacher-facing split of a grading queue.
type GradingQueue struct {
	NeedsGrading []PendingGrade      `json:"needs_grading"`
	NotSubmitted []MissingSubmission `json:"not_submitted"`
}

// PartitionGradingQueue splits the queue by submission status. Graded items are dropped.
func PartitionGradingQueue(queue []models.GradingQueueItem, now time.Time) GradingQueue {
	result := GradingQueue{
		NeedsGrading: make([]PendingGrade, 0),
		NotSubmitted: make([]MissingSubmission, 0),
	}

	for _, item := range queue {
		switch item.SubmissionStatus {
		case models.SubmissionSubmitted:
			result.NeedsGrading = append(result.NeedsGrading, PendingGrade{
				GradingQueueItem: item,
				IsLate:           IsLate(item.SubmittedAt, item.Assignment.DueDate),
			})
		case models.SubmissionNotStarted, models.SubmissionInProgress:
			days := DaysRemaining(item.Assignment.DueDate, now)
			missing := MissingSubmission{GradingQueueItem: item, DaysRemaining: days}
			if days < 0 {
				missing.Overdue = true
				missing.OverdueDays = -days
			}
			result.NotSubmitted = append(result.NotSubmitted, missing)
		}
	}

	return result
}

// IsLate reports whether the work was handed in after the due date.
func IsLate(submittedAt *time.Time, due time.Time) bool {
	return submittedAt != nil && submittedAt.After(due)
}

// DaysRemaining rounds the time until due up to whole days; negative means overdue.
func DaysRemaining(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}
