package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	ListForStudent(ctx context.Context, studentID uint) ([]models.Assignment, error)
	CountForStudent(ctx context.Context, studentID uint) (int64, error)
	Create(ctx context.Context, assignment *models.Assignment) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) ListForStudent(ctx context.Context, studentID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.forStudent(ctx, studentID).Order("due_date ASC, id ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) CountForStudent(ctx context.Context, studentID uint) (int64, error) {
	var total int64
	if err := r.forStudent(ctx, studentID).Model(&models.Assignment{}).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) forStudent(ctx context.Context, studentID uint) *gorm.DB {
	classes := r.db.Table("class_students").Select("class_id").Where("student_id = ?", studentID)
	return r.db.WithContext(ctx).Where("class_id IN (?)", classes)
}
