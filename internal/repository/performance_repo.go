package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// PerformanceRepository stores weekly performance samples.
type PerformanceRepository interface {
	ListByStudent(ctx context.Context, studentID uint) ([]models.PerformanceSample, error)
	LatestWeek(ctx context.Context, studentID uint) (int, error)
	Upsert(ctx context.Context, sample *models.PerformanceSample) error
}

type performanceRepository struct {
	db *gorm.DB
}

// NewPerformanceRepository constructs a performance repository.
func NewPerformanceRepository(db *gorm.DB) PerformanceRepository {
	return &performanceRepository{db: db}
}

// ListByStudent returns samples in chronological (week) order.
func (r *performanceRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.PerformanceSample, error) {
	var samples []models.PerformanceSample
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("week_number ASC").
		Find(&samples).Error
	if err != nil {
		return nil, err
	}

	return samples, nil
}

// LatestWeek returns 0 when the student has no samples yet.
func (r *performanceRepository) LatestWeek(ctx context.Context, studentID uint) (int, error) {
	var sample models.PerformanceSample
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("week_number DESC").
		First(&sample).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return sample.WeekNumber, nil
}

func (r *performanceRepository) Upsert(ctx context.Context, sample *models.PerformanceSample) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "week_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"avg_grade", "completion_rate"}),
	}).Create(sample).Error
}
