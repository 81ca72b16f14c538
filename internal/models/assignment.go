package models

import "time"

// Assignment represents a piece of graded coursework.
type Assignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Subject     string    `gorm:"size:128;index" json:"subject"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	MaxPoints   float64   `gorm:"not null;default:100" json:"max_points"`
	ClassID     uint      `gorm:"index" json:"-"`
	TeacherID   uint      `gorm:"index" json:"-"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// AssignmentWithGrade pairs an assignment with the viewing student's grade, if any.
type AssignmentWithGrade struct {
	Assignment Assignment `json:"assignment"`
	Grade      *Grade     `json:"grade"`
}
