package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// GradeRepository persists grade rows, one per student and assignment.
type GradeRepository interface {
	GetByID(ctx context.Context, id uint) (models.Grade, error)
	FindByStudentAssignment(ctx context.Context, studentID, assignmentID uint) (models.Grade, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Grade, error)
	ListGradingQueue(ctx context.Context, teacherID uint) ([]models.Grade, error)
	ListStudentIDs(ctx context.Context) ([]uint, error)
	Create(ctx context.Context, grade *models.Grade) error
	Save(ctx context.Context, grade *models.Grade) error
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository constructs a grade repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) GetByID(ctx context.Context, id uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).Preload("Assignment").First(&grade, id).Error; err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}

func (r *gradeRepository) FindByStudentAssignment(ctx context.Context, studentID, assignmentID uint) (models.Grade, error) {
	var grade models.Grade
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND assignment_id = ?", studentID, assignmentID).
		First(&grade).Error
	if err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}

func (r *gradeRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Grade, error) {
	var grades []models.Grade
	err := r.db.WithContext(ctx).
		Preload("Assignment").
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&grades).Error
	if err != nil {
		return nil, err
	}

	return grades, nil
}

// ListGradingQueue returns every grade row on the teacher's assignments, oldest deadline first.
func (r *gradeRepository) ListGradingQueue(ctx context.Context, teacherID uint) ([]models.Grade, error) {
	var grades []models.Grade
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Assignment").
		Select("grades.*").
		Joins("JOIN assignments ON assignments.id = grades.assignment_id").
		Where("assignments.teacher_id = ?", teacherID).
		Order("assignments.due_date ASC, grades.id ASC").
		Find(&grades).Error
	if err != nil {
		return nil, err
	}

	return grades, nil
}

// ListStudentIDs returns the students that have at least one grade row.
func (r *gradeRepository) ListStudentIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Grade{}).Distinct().Order("student_id ASC").Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *gradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Omit("Assignment", "Student").Create(grade).Error
}

func (r *gradeRepository) Save(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Omit("Assignment", "Student").Save(grade).Error
}
