package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// StudentRepository provides access to student records.
type StudentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	GetByID(ctx context.Context, id uint) (models.Student, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

// ListByTeacher returns every student enrolled in at least one of the teacher's classes.
func (r *studentRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Student, error) {
	enrolled := r.db.Table("class_students").
		Select("class_students.student_id").
		Joins("JOIN classes ON classes.id = class_students.class_id").
		Where("classes.teacher_id = ?", teacherID)

	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("id IN (?)", enrolled).
		Order("name ASC, id ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}
