package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/observability"
	"github.com/noah-isme/studyboard-api/internal/repository"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

// DashboardInvalidator drops cached dashboards after writes.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, studentID uint)
}

// StudentDashboardService serves the student dashboard payload and the views derived from it.
type StudentDashboardService interface {
	DashboardInvalidator
	GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
	Grades(ctx context.Context, studentID uint) ([]models.AssignmentWithGrade, error)
	Overview(ctx context.Context, studentID uint, order viewmodel.TaskSort) (viewmodel.StudentOverview, error)
	StudyPlan(ctx context.Context, studentID uint, order viewmodel.TaskSort) (dto.StudyPlanResponse, error)
	ToggleStudyTask(ctx context.Context, studentID uint, taskID viewmodel.TaskID, order viewmodel.TaskSort) (dto.TaskToggleResponse, error)
	Assignments(ctx context.Context, studentID uint, filter viewmodel.AssignmentFilter, order viewmodel.AssignmentSort) (dto.AssignmentListResponse, error)
}

type studentDashboardService struct {
	students    repository.StudentRepository
	assignments repository.AssignmentRepository
	grades      repository.GradeRepository
	performance repository.PerformanceRepository
	predictions PredictionService
	progress    TaskProgressStore
	cache       *redis.Client
	cacheTTL    time.Duration
	quoteSeed   int64
	logger      zerolog.Logger
	now         func() time.Time
}

// StudentDashboardDeps groups the collaborators of the student dashboard.
type StudentDashboardDeps struct {
	Students    repository.StudentRepository
	Assignments repository.AssignmentRepository
	Grades      repository.GradeRepository
	Performance repository.PerformanceRepository
	Predictions PredictionService
	Progress    TaskProgressStore
	Cache       *redis.Client
	CacheTTL    time.Duration
	QuoteSeed   int64
}

// NewStudentDashboardService builds the dashboard aggregator.
func NewStudentDashboardService(deps StudentDashboardDeps, logger zerolog.Logger) StudentDashboardService {
	progress := deps.Progress
	if progress == nil {
		progress = NewTaskProgressStore(deps.Cache)
	}

	return &studentDashboardService{
		students:    deps.Students,
		assignments: deps.Assignments,
		grades:      deps.Grades,
		performance: deps.Performance,
		predictions: deps.Predictions,
		progress:    progress,
		cache:       deps.Cache,
		cacheTTL:    deps.CacheTTL,
		quoteSeed:   deps.QuoteSeed,
		logger:      logger.With().Str("component", "student_dashboard_service").Logger(),
		now:         time.Now,
	}
}

func dashboardCacheKey(studentID uint) string {
	return fmt.Sprintf("dashboard:student:%d", studentID)
}

func (s *studentDashboardService) GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := dashboardCacheKey(studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.DashboardCache().WithLabelValues("hit").Inc()
				s.logger.Debug().Uint("student_id", studentID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		observability.DashboardCache().WithLabelValues("miss").Inc()
	}

	response, err := s.buildDashboard(ctx, studentID, s.now())
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *studentDashboardService) Invalidate(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *studentDashboardService) buildDashboard(ctx context.Context, studentID uint, now time.Time) (dto.StudentDashboardResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentDashboardResponse{}, ErrStudentNotFound
		}
		return dto.StudentDashboardResponse{}, err
	}

	prediction, err := s.predictions.ForStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	assignments, err := s.assignments.ListForStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, fmt.Errorf("list assignments: %w", err)
	}

	grades, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, fmt.Errorf("list grades: %w", err)
	}

	gradeByAssignment := make(map[uint]models.Grade, len(grades))
	for _, grade := range grades {
		gradeByAssignment[grade.AssignmentID] = grade
	}

	upcoming := make([]models.Assignment, 0)
	withGrades := make([]models.AssignmentWithGrade, 0, len(assignments))
	for _, assignment := range assignments {
		if !assignment.DueDate.Before(now) {
			upcoming = append(upcoming, assignment)
		}

		item := models.AssignmentWithGrade{Assignment: assignment}
		if grade, ok := gradeByAssignment[assignment.ID]; ok {
			item.Grade = &grade
		}
		withGrades = append(withGrades, item)
	}

	return dto.StudentDashboardResponse{
		Student:               student,
		Prediction:            prediction,
		UpcomingAssignments:   upcoming,
		AssignmentsWithGrades: withGrades,
	}, nil
}

// Grades lists assignments the student already has a grade row for.
func (s *studentDashboardService) Grades(ctx context.Context, studentID uint) ([]models.AssignmentWithGrade, error) {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	grades, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	result := make([]models.AssignmentWithGrade, 0, len(grades))
	for _, grade := range grades {
		result = append(result, models.AssignmentWithGrade{Assignment: grade.Assignment, Grade: &grade})
	}

	return result, nil
}

func (s *studentDashboardService) Overview(ctx context.Context, studentID uint, order viewmodel.TaskSort) (viewmodel.StudentOverview, error) {
	now := s.now()

	dashboard, err := s.GetDashboard(ctx, studentID)
	if err != nil {
		return viewmodel.StudentOverview{}, err
	}

	samples, err := s.performance.ListByStudent(ctx, studentID)
	if err != nil {
		return viewmodel.StudentOverview{}, fmt.Errorf("load performance: %w", err)
	}

	completed, err := s.completed(ctx, studentID)
	if err != nil {
		return viewmodel.StudentOverview{}, err
	}

	prediction := dashboard.Prediction
	return viewmodel.BuildStudentOverview(viewmodel.OverviewInput{
		Assignments: dashboard.AssignmentsWithGrades,
		Prediction:  &prediction,
		Latest:      viewmodel.LatestSample(samples),
		Completed:   completed,
		Sort:        order,
	}, s.newRand(now), now), nil
}

func (s *studentDashboardService) StudyPlan(ctx context.Context, studentID uint, order viewmodel.TaskSort) (dto.StudyPlanResponse, error) {
	now := s.now()

	plan, err := s.plan(ctx, studentID, now)
	if err != nil {
		return dto.StudyPlanResponse{}, err
	}

	completed, err := s.completed(ctx, studentID)
	if err != nil {
		return dto.StudyPlanResponse{}, err
	}

	return dto.StudyPlanResponse{
		Sort:  order,
		Board: viewmodel.PartitionTasks(plan, completed, order),
	}, nil
}

func (s *studentDashboardService) ToggleStudyTask(ctx context.Context, studentID uint, taskID viewmodel.TaskID, order viewmodel.TaskSort) (dto.TaskToggleResponse, error) {
	now := s.now()

	plan, err := s.plan(ctx, studentID, now)
	if err != nil {
		return dto.TaskToggleResponse{}, err
	}
	if !planContains(plan, taskID) {
		return dto.TaskToggleResponse{}, ErrTaskNotFound
	}

	done, err := s.progress.Toggle(ctx, studentOwner(studentID), taskID)
	if err != nil {
		return dto.TaskToggleResponse{}, fmt.Errorf("toggle task: %w", err)
	}

	completed, err := s.completed(ctx, studentID)
	if err != nil {
		return dto.TaskToggleResponse{}, err
	}

	return dto.TaskToggleResponse{
		TaskID:    taskID,
		Completed: done,
		Board:     viewmodel.PartitionTasks(plan, completed, order),
	}, nil
}

func (s *studentDashboardService) Assignments(ctx context.Context, studentID uint, filter viewmodel.AssignmentFilter, order viewmodel.AssignmentSort) (dto.AssignmentListResponse, error) {
	now := s.now()

	dashboard, err := s.GetDashboard(ctx, studentID)
	if err != nil {
		return dto.AssignmentListResponse{}, err
	}

	items := viewmodel.FilterAndSortAssignments(dashboard.AssignmentsWithGrades, filter, order, now)
	return dto.AssignmentListResponse{
		Filter: filter,
		Sort:   order,
		Items: dto.NewAssignmentListItems(items, func(a models.Assignment) bool {
			return a.IsPastDue(now)
		}),
	}, nil
}

func (s *studentDashboardService) plan(ctx context.Context, studentID uint, now time.Time) ([]viewmodel.Task, error) {
	dashboard, err := s.GetDashboard(ctx, studentID)
	if err != nil {
		return nil, err
	}

	avg := viewmodel.AverageScore(dashboard.AssignmentsWithGrades)
	poor := viewmodel.PoorAssignments(dashboard.AssignmentsWithGrades)
	completion := dashboard.Prediction.CurrentPerformance.CompletionRate

	return viewmodel.GenerateStudyPlan(avg, completion, poor, now), nil
}

func (s *studentDashboardService) completed(ctx context.Context, studentID uint) (viewmodel.CompletedSet, error) {
	completed, err := s.progress.Completed(ctx, studentOwner(studentID))
	if err != nil {
		return nil, fmt.Errorf("load task progress: %w", err)
	}
	return completed, nil
}

func (s *studentDashboardService) newRand(now time.Time) *rand.Rand {
	seed := s.quoteSeed
	if seed == 0 {
		seed = now.UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
