package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// ClassRepository reads classes and their enrollment counts.
type ClassRepository interface {
	List(ctx context.Context) ([]models.Class, error)
	ListSummariesByTeacher(ctx context.Context, teacherID uint) ([]models.ClassSummary, error)
	Create(ctx context.Context, class *models.Class) error
	Enroll(ctx context.Context, classID uint, students ...models.Student) error
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository constructs a class repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) List(ctx context.Context) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&classes).Error; err != nil {
		return nil, err
	}

	return classes, nil
}

type classCountRow struct {
	ClassID uint
	Total   int64
}

func (r *classRepository) ListSummariesByTeacher(ctx context.Context, teacherID uint) ([]models.ClassSummary, error) {
	db := r.db.WithContext(ctx)

	var classes []models.Class
	if err := db.Where("teacher_id = ?", teacherID).Order("id ASC").Find(&classes).Error; err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return []models.ClassSummary{}, nil
	}

	ids := make([]uint, 0, len(classes))
	for _, class := range classes {
		ids = append(ids, class.ID)
	}

	var studentRows []classCountRow
	if err := db.Table("class_students").
		Select("class_id, COUNT(*) AS total").
		Where("class_id IN ?", ids).
		Group("class_id").
		Scan(&studentRows).Error; err != nil {
		return nil, err
	}

	var assignmentRows []classCountRow
	if err := db.Model(&models.Assignment{}).
		Select("class_id, COUNT(*) AS total").
		Where("class_id IN ?", ids).
		Group("class_id").
		Scan(&assignmentRows).Error; err != nil {
		return nil, err
	}

	students := countsByClass(studentRows)
	assignments := countsByClass(assignmentRows)

	summaries := make([]models.ClassSummary, 0, len(classes))
	for _, class := range classes {
		summaries = append(summaries, models.ClassSummary{
			Class:           class,
			StudentCount:    students[class.ID],
			AssignmentCount: assignments[class.ID],
		})
	}

	return summaries, nil
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) Enroll(ctx context.Context, classID uint, students ...models.Student) error {
	if len(students) == 0 {
		return nil
	}
	class := models.Class{ID: classID}
	return r.db.WithContext(ctx).Model(&class).Association("Students").Append(&students)
}

func countsByClass(rows []classCountRow) map[uint]int64 {
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.ClassID] = row.Total
	}
	return counts
}
