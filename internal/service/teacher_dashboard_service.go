package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/repository"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

// TeacherDashboardService serves the teacher dashboard and its follow-up views.
type TeacherDashboardService interface {
	GetDashboard(ctx context.Context, teacherID uint) (dto.TeacherDashboardResponse, error)
	Students(ctx context.Context, teacherID uint) ([]models.Student, error)
	AtRisk(ctx context.Context, teacherID uint) ([]models.StudentPrediction, error)
	Plan(ctx context.Context, teacherID uint, order viewmodel.TaskSort) (dto.TeacherPlanResponse, error)
	TogglePlanTask(ctx context.Context, teacherID uint, taskID viewmodel.TaskID, order viewmodel.TaskSort) (dto.TaskToggleResponse, error)
	Feedback(ctx context.Context, teacherID, studentID uint, assignment string) (dto.FeedbackResponse, error)
}

type teacherDashboardService struct {
	teachers    repository.TeacherRepository
	students    repository.StudentRepository
	classes     repository.ClassRepository
	grades      repository.GradeRepository
	predictions PredictionService
	progress    TaskProgressStore
	logger      zerolog.Logger
	now         func() time.Time
}

// TeacherDashboardDeps groups the collaborators of the teacher dashboard.
type TeacherDashboardDeps struct {
	Teachers    repository.TeacherRepository
	Students    repository.StudentRepository
	Classes     repository.ClassRepository
	Grades      repository.GradeRepository
	Predictions PredictionService
	Progress    TaskProgressStore
}

// NewTeacherDashboardService builds the teacher dashboard aggregator.
func NewTeacherDashboardService(deps TeacherDashboardDeps, logger zerolog.Logger) TeacherDashboardService {
	progress := deps.Progress
	if progress == nil {
		progress = NewTaskProgressStore(nil)
	}

	return &teacherDashboardService{
		teachers:    deps.Teachers,
		students:    deps.Students,
		classes:     deps.Classes,
		grades:      deps.Grades,
		predictions: deps.Predictions,
		progress:    progress,
		logger:      logger.With().Str("component", "teacher_dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *teacherDashboardService) GetDashboard(ctx context.Context, teacherID uint) (dto.TeacherDashboardResponse, error) {
	teacher, err := s.teacher(ctx, teacherID)
	if err != nil {
		return dto.TeacherDashboardResponse{}, err
	}

	var (
		atRisk  []models.StudentPrediction
		classes []models.ClassSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := s.predictions.AtRiskForTeacher(gctx, teacherID)
		if err != nil {
			return fmt.Errorf("resolve at-risk students: %w", err)
		}
		atRisk = result
		return nil
	})
	g.Go(func() error {
		result, err := s.classes.ListSummariesByTeacher(gctx, teacherID)
		if err != nil {
			return fmt.Errorf("list classes: %w", err)
		}
		classes = result
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Uint("teacher_id", teacherID).Msg("failed to build teacher dashboard")
		return dto.TeacherDashboardResponse{}, err
	}

	if atRisk == nil {
		atRisk = []models.StudentPrediction{}
	}
	if classes == nil {
		classes = []models.ClassSummary{}
	}

	return dto.TeacherDashboardResponse{
		Teacher:        teacher,
		AtRiskStudents: atRisk,
		Classes:        classes,
	}, nil
}

func (s *teacherDashboardService) Students(ctx context.Context, teacherID uint) ([]models.Student, error) {
	if _, err := s.teacher(ctx, teacherID); err != nil {
		return nil, err
	}

	students, err := s.students.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

func (s *teacherDashboardService) AtRisk(ctx context.Context, teacherID uint) ([]models.StudentPrediction, error) {
	return s.predictions.AtRiskForTeacher(ctx, teacherID)
}

func (s *teacherDashboardService) Plan(ctx context.Context, teacherID uint, order viewmodel.TaskSort) (dto.TeacherPlanResponse, error) {
	now := s.now()

	plan, err := s.plan(ctx, teacherID, now)
	if err != nil {
		return dto.TeacherPlanResponse{}, err
	}

	completed, err := s.progress.Completed(ctx, teacherOwner(teacherID))
	if err != nil {
		return dto.TeacherPlanResponse{}, fmt.Errorf("load task progress: %w", err)
	}

	return dto.TeacherPlanResponse{
		Sort:  order,
		Board: viewmodel.PartitionTasks(plan, completed, order),
	}, nil
}

func (s *teacherDashboardService) TogglePlanTask(ctx context.Context, teacherID uint, taskID viewmodel.TaskID, order viewmodel.TaskSort) (dto.TaskToggleResponse, error) {
	now := s.now()

	plan, err := s.plan(ctx, teacherID, now)
	if err != nil {
		return dto.TaskToggleResponse{}, err
	}
	if !planContains(plan, taskID) {
		return dto.TaskToggleResponse{}, ErrTaskNotFound
	}

	owner := teacherOwner(teacherID)
	done, err := s.progress.Toggle(ctx, owner, taskID)
	if err != nil {
		return dto.TaskToggleResponse{}, fmt.Errorf("toggle task: %w", err)
	}

	completed, err := s.progress.Completed(ctx, owner)
	if err != nil {
		return dto.TaskToggleResponse{}, fmt.Errorf("load task progress: %w", err)
	}

	return dto.TaskToggleResponse{
		TaskID:    taskID,
		Completed: done,
		Board:     viewmodel.PartitionTasks(plan, completed, order),
	}, nil
}

// Feedback prefills a message about one assignment. The grade comes from the
// student's at-risk subjects first and falls back to the recorded grades.
func (s *teacherDashboardService) Feedback(ctx context.Context, teacherID, studentID uint, assignment string) (dto.FeedbackResponse, error) {
	if _, err := s.teacher(ctx, teacherID); err != nil {
		return dto.FeedbackResponse{}, err
	}
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackResponse{}, ErrStudentNotFound
		}
		return dto.FeedbackResponse{}, err
	}

	grade, err := s.gradeFor(ctx, studentID, assignment)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}

	return dto.FeedbackResponse{
		StudentID:  studentID,
		Assignment: assignment,
		Grade:      grade,
		Band:       viewmodel.BandForScore(grade),
		Message:    viewmodel.ComposeFeedback(assignment, grade),
	}, nil
}

func (s *teacherDashboardService) gradeFor(ctx context.Context, studentID uint, assignment string) (*float64, error) {
	prediction, err := s.predictions.ForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	for _, subject := range prediction.AtRiskSubjects {
		if subject.Assignment == assignment && subject.Grade != nil {
			return subject.Grade, nil
		}
	}

	grades, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	for _, grade := range grades {
		if grade.Assignment.Title == assignment && grade.Score != nil {
			return grade.Score, nil
		}
	}

	return nil, nil
}

func (s *teacherDashboardService) plan(ctx context.Context, teacherID uint, now time.Time) ([]viewmodel.Task, error) {
	atRisk, err := s.predictions.AtRiskForTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return viewmodel.GenerateTeacherPlan(atRisk, now), nil
}

func (s *teacherDashboardService) teacher(ctx context.Context, teacherID uint) (models.Teacher, error) {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Teacher{}, ErrTeacherNotFound
		}
		return models.Teacher{}, err
	}
	return teacher, nil
}
