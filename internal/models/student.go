package models

import "time"

// Student represents a learner that receives assignments and grades.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Teacher represents an instructor owning classes and assignments.
type Teacher struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Class groups enrolled students under a teacher.
type Class struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Subject   string    `gorm:"size:128" json:"subject"`
	TeacherID uint      `gorm:"index;not null" json:"teacher_id"`
	Students  []Student `gorm:"many2many:class_students" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ClassSummary is the per-class row rendered on the teacher dashboard.
type ClassSummary struct {
	Class           Class `json:"class"`
	StudentCount    int64 `json:"student_count"`
	AssignmentCount int64 `json:"assignment_count"`
}

// UserType identifies which side of the dashboard a participant belongs to.
type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeTeacher UserType = "teacher"
)

// Valid reports whether the user type is one the dashboard knows about.
func (t UserType) Valid() bool {
	return t == UserTypeStudent || t == UserTypeTeacher
}
