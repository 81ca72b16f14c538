package models

import "time"

// PerformanceSample is one weekly snapshot of a student's standing.
type PerformanceSample struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	StudentID      uint      `gorm:"not null;uniqueIndex:idx_performance_student_week" json:"-"`
	WeekNumber     int       `gorm:"not null;uniqueIndex:idx_performance_student_week" json:"week_number"`
	AvgGrade       float64   `json:"avg_grade"`
	CompletionRate float64   `json:"completion_rate"`
	CreatedAt      time.Time `json:"-"`
}
