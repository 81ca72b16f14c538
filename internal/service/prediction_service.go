package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/repository"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

const predictionFanOut = 4

// PredictionService resolves the prediction shown for a student.
type PredictionService interface {
	ForStudent(ctx context.Context, studentID uint) (models.Prediction, error)
	AtRiskForTeacher(ctx context.Context, teacherID uint) ([]models.StudentPrediction, error)
}

type predictionService struct {
	predictions repository.PredictionRepository
	performance repository.PerformanceRepository
	students    repository.StudentRepository
	teachers    repository.TeacherRepository
	logger      zerolog.Logger
}

// NewPredictionService constructs the prediction resolver.
func NewPredictionService(predictions repository.PredictionRepository, performance repository.PerformanceRepository, students repository.StudentRepository, teachers repository.TeacherRepository, logger zerolog.Logger) PredictionService {
	return &predictionService{
		predictions: predictions,
		performance: performance,
		students:    students,
		teachers:    teachers,
		logger:      logger.With().Str("component", "prediction_service").Logger(),
	}
}

// ForStudent returns the stored prediction, or one derived from performance history when none exists.
func (s *predictionService) ForStudent(ctx context.Context, studentID uint) (models.Prediction, error) {
	record, err := s.predictions.GetByStudent(ctx, studentID)
	if err == nil {
		return record.ToPrediction(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Prediction{}, fmt.Errorf("load prediction: %w", err)
	}

	samples, err := s.performance.ListByStudent(ctx, studentID)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("load performance: %w", err)
	}

	return fallbackPrediction(samples), nil
}

// AtRiskForTeacher resolves predictions for every enrolled student and keeps high and medium tiers.
func (s *predictionService) AtRiskForTeacher(ctx context.Context, teacherID uint) ([]models.StudentPrediction, error) {
	if _, err := s.teachers.GetByID(ctx, teacherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}

	students, err := s.students.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	resolved := make([]models.Prediction, len(students))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(predictionFanOut)
	for idx, student := range students {
		g.Go(func() error {
			prediction, err := s.ForStudent(gctx, student.ID)
			if err != nil {
				return err
			}
			resolved[idx] = prediction
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Uint("teacher_id", teacherID).Msg("failed to resolve predictions")
		return nil, err
	}

	atRisk := make([]models.StudentPrediction, 0)
	for idx, student := range students {
		if resolved[idx].RiskLevel.IsAtRisk() {
			atRisk = append(atRisk, models.StudentPrediction{Student: student, Prediction: resolved[idx]})
		}
	}

	return atRisk, nil
}

func fallbackPrediction(samples []models.PerformanceSample) models.Prediction {
	latest := viewmodel.LatestSample(samples)
	decline := viewmodel.DetectDecline(samples)

	prediction := models.Prediction{
		RiskLevel:         viewmodel.ClassifyRisk(latest, nil),
		Declining:         decline.Declining,
		DeclinePercentage: decline.Percentage,
		AtRiskSubjects:    []models.AtRiskSubject{},
		StudyTips:         map[string][]string{},
	}
	if latest != nil {
		prediction.CurrentPerformance = models.CurrentPerformance{
			AvgGrade:       latest.AvgGrade,
			CompletionRate: latest.CompletionRate,
		}
	}

	return prediction
}
