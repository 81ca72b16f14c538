package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/observability"
	"github.com/noah-isme/studyboard-api/internal/repository"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

const gradebookSheet = "Gradebook"

// GradingService covers the teacher grading queue and score entry.
type GradingService interface {
	Queue(ctx context.Context, teacherID uint) ([]models.GradingQueueItem, error)
	QueueView(ctx context.Context, teacherID uint) (viewmodel.GradingQueue, error)
	Grade(ctx context.Context, gradeID uint, rawScore string) (models.Grade, error)
	Create(ctx context.Context, payload dto.CreateGradeRequest) (models.Grade, error)
	Export(ctx context.Context, teacherID uint) (*bytes.Buffer, string, error)
}

type gradingService struct {
	grades      repository.GradeRepository
	teachers    repository.TeacherRepository
	students    repository.StudentRepository
	assignments repository.AssignmentRepository
	dashboards  DashboardInvalidator
	validator   *validator.Validate
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// GradingDeps groups the grading collaborators.
type GradingDeps struct {
	Grades      repository.GradeRepository
	Teachers    repository.TeacherRepository
	Students    repository.StudentRepository
	Assignments repository.AssignmentRepository
	Dashboards  DashboardInvalidator
}

// NewGradingService constructs the grading service.
func NewGradingService(deps GradingDeps, validate *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		grades:      deps.Grades,
		teachers:    deps.Teachers,
		students:    deps.Students,
		assignments: deps.Assignments,
		dashboards:  deps.Dashboards,
		validator:   validate,
		tracer:      otel.Tracer("github.com/noah-isme/studyboard-api/internal/service/grading"),
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

func (s *gradingService) Queue(ctx context.Context, teacherID uint) ([]models.GradingQueueItem, error) {
	if _, err := s.teachers.GetByID(ctx, teacherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}

	grades, err := s.grades.ListGradingQueue(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list grading queue: %w", err)
	}

	queue := make([]models.GradingQueueItem, 0, len(grades))
	for _, grade := range grades {
		queue = append(queue, models.GradingQueueItem{
			GradeID:           grade.ID,
			Student:           grade.Student,
			Assignment:        grade.Assignment,
			SubmissionStatus:  grade.SubmissionStatus,
			SubmissionContent: grade.SubmissionContent,
			SubmittedAt:       grade.SubmittedAt,
			Score:             grade.Score,
		})
	}

	return queue, nil
}

func (s *gradingService) QueueView(ctx context.Context, teacherID uint) (viewmodel.GradingQueue, error) {
	now := s.now()

	queue, err := s.Queue(ctx, teacherID)
	if err != nil {
		return viewmodel.GradingQueue{}, err
	}

	return viewmodel.PartitionGradingQueue(queue, now), nil
}

// Grade records a score for handed-in work. Graded work may be re-graded.
func (s *gradingService) Grade(ctx context.Context, gradeID uint, rawScore string) (models.Grade, error) {
	ctx, span := s.tracer.Start(ctx, "grading.grade", trace.WithAttributes(
		attribute.Int64("grading.grade_id", int64(gradeID)),
	))
	defer span.End()

	score, err := viewmodel.ParseScore(rawScore)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid_score")
		return models.Grade{}, err
	}

	grade, err := s.grades.GetByID(ctx, gradeID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "grade_not_found")
			return models.Grade{}, ErrGradeNotFound
		}
		span.SetStatus(codes.Error, "grade_lookup_failed")
		return models.Grade{}, err
	}

	if !grade.SubmissionStatus.IsResolved() {
		span.SetStatus(codes.Error, "not_submitted")
		return models.Grade{}, ErrNotSubmitted
	}

	grade.Score = &score
	grade.SubmissionStatus = models.SubmissionGraded
	grade.CompletionStatus = models.CompletionCompleted

	if err := s.grades.Save(ctx, &grade); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_update_failed")
		s.logger.Error().Err(err).Uint("grade_id", gradeID).Msg("failed to store grade")
		return models.Grade{}, err
	}

	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, grade.StudentID)
	}
	observability.GradesRecorded().Inc()
	span.SetAttributes(attribute.Float64("grading.score", score))

	return grade, nil
}

func (s *gradingService) Create(ctx context.Context, payload dto.CreateGradeRequest) (models.Grade, error) {
	ctx, span := s.tracer.Start(ctx, "grading.create", trace.WithAttributes(
		attribute.Int64("grading.student_id", int64(payload.StudentID)),
		attribute.Int64("grading.assignment_id", int64(payload.AssignmentID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return models.Grade{}, err
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Grade{}, ErrStudentNotFound
		}
		return models.Grade{}, err
	}
	if _, err := s.assignments.GetByID(ctx, payload.AssignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Grade{}, ErrAssignmentNotFound
		}
		return models.Grade{}, err
	}

	if _, err := s.grades.FindByStudentAssignment(ctx, payload.StudentID, payload.AssignmentID); err == nil {
		span.SetStatus(codes.Error, "grade_exists")
		return models.Grade{}, ErrGradeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		return models.Grade{}, err
	}

	grade := models.Grade{
		StudentID:        payload.StudentID,
		AssignmentID:     payload.AssignmentID,
		Score:            payload.Score,
		CompletionStatus: payload.CompletionStatus,
		SubmissionStatus: models.SubmissionStatus(payload.SubmissionStatus),
	}
	if grade.SubmissionStatus == "" {
		grade.SubmissionStatus = models.SubmissionNotStarted
		if grade.Score != nil {
			grade.SubmissionStatus = models.SubmissionGraded
		}
	}
	if grade.CompletionStatus == "" {
		grade.CompletionStatus = models.CompletionNotStarted
		if grade.SubmissionStatus.IsResolved() {
			grade.CompletionStatus = models.CompletionCompleted
		}
	}
	if grade.SubmissionStatus.IsResolved() {
		submittedAt := s.now()
		grade.SubmittedAt = &submittedAt
	}

	if err := s.grades.Create(ctx, &grade); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_create_failed")
		return models.Grade{}, err
	}

	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, grade.StudentID)
	}
	if grade.Score != nil {
		observability.GradesRecorded().Inc()
	}

	return grade, nil
}

// Export renders the teacher's grading queue as an xlsx gradebook.
func (s *gradingService) Export(ctx context.Context, teacherID uint) (*bytes.Buffer, string, error) {
	now := s.now()

	queue, err := s.Queue(ctx, teacherID)
	if err != nil {
		return nil, "", err
	}
	partition := viewmodel.PartitionGradingQueue(queue, now)
	late := make(map[uint]bool, len(partition.NeedsGrading))
	for _, item := range partition.NeedsGrading {
		late[item.GradeID] = item.IsLate
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(gradebookSheet)
	if err != nil {
		return nil, "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetColWidth(gradebookSheet, "A", "B", 24)
	_ = f.SetColWidth(gradebookSheet, "C", "C", 16)
	_ = f.SetColWidth(gradebookSheet, "D", "H", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"Student", "Assignment", "Subject", "Due", "Status", "Submitted", "Late", "Score"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(gradebookSheet, cell, header)
	}
	_ = f.SetCellStyle(gradebookSheet, "A1", "H1", headerStyle)

	for i, item := range queue {
		row := i + 2
		values := []interface{}{
			item.Student.Name,
			item.Assignment.Title,
			item.Assignment.Subject,
			item.Assignment.DueDate.Format("2006-01-02"),
			string(item.SubmissionStatus),
			"",
			"",
			"",
		}
		if item.SubmittedAt != nil {
			values[5] = item.SubmittedAt.Format("2006-01-02 15:04")
		}
		if late[item.GradeID] {
			values[6] = "yes"
		}
		if item.Score != nil {
			values[7] = *item.Score
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(gradebookSheet, cell, value)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error().Err(err).Uint("teacher_id", teacherID).Msg("failed to write gradebook")
		return nil, "", fmt.Errorf("write gradebook: %w", err)
	}

	filename := fmt.Sprintf("gradebook_teacher_%d_%s.xlsx", teacherID, now.Format("20060102"))
	return buf, filename, nil
}
