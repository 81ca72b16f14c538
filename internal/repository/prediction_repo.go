package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// PredictionRepository reads the predictions written by the external scoring job.
type PredictionRepository interface {
	GetByStudent(ctx context.Context, studentID uint) (models.PredictionRecord, error)
	Upsert(ctx context.Context, record *models.PredictionRecord) error
}

type predictionRepository struct {
	db *gorm.DB
}

// NewPredictionRepository constructs a prediction repository.
func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db: db}
}

func (r *predictionRepository) GetByStudent(ctx context.Context, studentID uint) (models.PredictionRecord, error) {
	var record models.PredictionRecord
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&record).Error; err != nil {
		return models.PredictionRecord{}, err
	}

	return record, nil
}

func (r *predictionRepository) Upsert(ctx context.Context, record *models.PredictionRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}},
		UpdateAll: true,
	}).Create(record).Error
}
