package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/observability"
	"github.com/noah-isme/studyboard-api/internal/repository"
)

const snapshotTimeout = 4 * time.Minute

// PerformanceService exposes performance history and records weekly snapshots.
type PerformanceService interface {
	History(ctx context.Context, studentID uint) ([]models.PerformanceSample, error)
	Snapshot(ctx context.Context) (int, error)
}

type performanceService struct {
	samples     repository.PerformanceRepository
	students    repository.StudentRepository
	grades      repository.GradeRepository
	assignments repository.AssignmentRepository
	logger      zerolog.Logger
}

// NewPerformanceService constructs the performance service.
func NewPerformanceService(samples repository.PerformanceRepository, students repository.StudentRepository, grades repository.GradeRepository, assignments repository.AssignmentRepository, logger zerolog.Logger) PerformanceService {
	return &performanceService{
		samples:     samples,
		students:    students,
		grades:      grades,
		assignments: assignments,
		logger:      logger.With().Str("component", "performance_service").Logger(),
	}
}

func (s *performanceService) History(ctx context.Context, studentID uint) ([]models.PerformanceSample, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	samples, err := s.samples.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if samples == nil {
		samples = []models.PerformanceSample{}
	}

	return samples, nil
}

// Snapshot appends the next weekly sample for every student with grade activity.
func (s *performanceService) Snapshot(ctx context.Context) (int, error) {
	studentIDs, err := s.grades.ListStudentIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list graded students: %w", err)
	}

	written := 0
	for _, studentID := range studentIDs {
		sample, err := s.computeSample(ctx, studentID)
		if err != nil {
			s.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to compute performance sample")
			continue
		}
		if err := s.samples.Upsert(ctx, &sample); err != nil {
			s.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to store performance sample")
			continue
		}
		written++
	}

	observability.SnapshotSamples().Add(float64(written))
	s.logger.Info().Int("students", len(studentIDs)).Int("written", written).Msg("performance snapshot completed")

	return written, nil
}

func (s *performanceService) computeSample(ctx context.Context, studentID uint) (models.PerformanceSample, error) {
	grades, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return models.PerformanceSample{}, err
	}

	total, err := s.assignments.CountForStudent(ctx, studentID)
	if err != nil {
		return models.PerformanceSample{}, err
	}

	week, err := s.samples.LatestWeek(ctx, studentID)
	if err != nil {
		return models.PerformanceSample{}, err
	}

	var scoreSum float64
	var scored, resolved int
	for _, grade := range grades {
		if grade.Score != nil {
			scoreSum += *grade.Score
			scored++
		}
		if grade.SubmissionStatus.IsResolved() {
			resolved++
		}
	}

	sample := models.PerformanceSample{StudentID: studentID, WeekNumber: week + 1}
	if scored > 0 {
		sample.AvgGrade = scoreSum / float64(scored)
	}
	if total > 0 {
		sample.CompletionRate = math.Min(1, float64(resolved)/float64(total))
	}

	return sample, nil
}

// StartSnapshotScheduler runs Snapshot on the cron schedule until Stop is called on the returned scheduler.
func StartSnapshotScheduler(spec string, svc PerformanceService, logger zerolog.Logger) (*cron.Cron, error) {
	log := logger.With().Str("component", "snapshot_scheduler").Logger()
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()

		if _, err := svc.Snapshot(ctx); err != nil {
			log.Error().Err(err).Msg("performance snapshot failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule performance snapshot: %w", err)
	}

	c.Start()
	log.Info().Str("schedule", spec).Msg("performance snapshot scheduled")

	return c, nil
}
