package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/repository"
)

// SubmissionService handles drafts and hand-ins for a student's assignment.
type SubmissionService interface {
	SaveDraft(ctx context.Context, assignmentID uint, payload dto.SubmissionRequest) (dto.SubmissionStatusResponse, error)
	Submit(ctx context.Context, assignmentID uint, payload dto.SubmissionRequest) (dto.SubmissionStatusResponse, error)
	Get(ctx context.Context, assignmentID, studentID uint) (dto.SubmissionStatusResponse, error)
}

type submissionService struct {
	grades      repository.GradeRepository
	assignments repository.AssignmentRepository
	students    repository.StudentRepository
	dashboards  DashboardInvalidator
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService creates a submission service.
func NewSubmissionService(grades repository.GradeRepository, assignments repository.AssignmentRepository, students repository.StudentRepository, dashboards DashboardInvalidator, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		grades:      grades,
		assignments: assignments,
		students:    students,
		dashboards:  dashboards,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		tracer:      otel.Tracer("github.com/noah-isme/studyboard-api/internal/service/submission"),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) SaveDraft(ctx context.Context, assignmentID uint, payload dto.SubmissionRequest) (dto.SubmissionStatusResponse, error) {
	return s.write(ctx, "submissions.save_draft", assignmentID, payload, models.SubmissionInProgress)
}

func (s *submissionService) Submit(ctx context.Context, assignmentID uint, payload dto.SubmissionRequest) (dto.SubmissionStatusResponse, error) {
	return s.write(ctx, "submissions.submit", assignmentID, payload, models.SubmissionSubmitted)
}

func (s *submissionService) Get(ctx context.Context, assignmentID, studentID uint) (dto.SubmissionStatusResponse, error) {
	if err := s.ensureParticipants(ctx, assignmentID, studentID); err != nil {
		return dto.SubmissionStatusResponse{}, err
	}

	grade, err := s.grades.FindByStudentAssignment(ctx, studentID, assignmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.NewSubmissionStatusResponse(nil), nil
	}
	if err != nil {
		return dto.SubmissionStatusResponse{}, err
	}

	return dto.NewSubmissionStatusResponse(&grade), nil
}

func (s *submissionService) write(ctx context.Context, spanName string, assignmentID uint, payload dto.SubmissionRequest, target models.SubmissionStatus) (dto.SubmissionStatusResponse, error) {
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.Int64("submission.assignment_id", int64(assignmentID)),
		attribute.Int64("submission.student_id", int64(payload.StudentID)),
	))
	defer span.End()

	fail := func(err error, status string) (dto.SubmissionStatusResponse, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		return dto.SubmissionStatusResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return fail(err, "validation_failed")
	}

	content, err := s.cleanContent(payload.Content)
	if err != nil {
		return fail(err, "invalid_content")
	}
	if target == models.SubmissionSubmitted && content == "" {
		return fail(ErrEmptySubmission, "empty_submission")
	}

	if err := s.ensureParticipants(ctx, assignmentID, payload.StudentID); err != nil {
		return fail(err, "lookup_failed")
	}

	grade, err := s.grades.FindByStudentAssignment(ctx, payload.StudentID, assignmentID)
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(err, "grade_lookup_failed")
	}
	if !exists {
		grade = models.Grade{
			StudentID:        payload.StudentID,
			AssignmentID:     assignmentID,
			CompletionStatus: models.CompletionNotStarted,
			SubmissionStatus: models.SubmissionNotStarted,
		}
	}

	if grade.SubmissionStatus == models.SubmissionGraded || !grade.SubmissionStatus.CanAdvanceTo(target) {
		return fail(ErrSubmissionLocked, "submission_locked")
	}

	grade.SubmissionContent = content
	grade.SubmissionStatus = target
	if target == models.SubmissionSubmitted {
		submittedAt := s.now()
		grade.SubmittedAt = &submittedAt
		grade.CompletionStatus = models.CompletionCompleted
	} else {
		grade.CompletionStatus = models.CompletionInProgress
	}

	if exists {
		err = s.grades.Save(ctx, &grade)
	} else {
		err = s.grades.Create(ctx, &grade)
	}
	if err != nil {
		s.logger.Error().Err(err).Uint("assignment_id", assignmentID).Uint("student_id", payload.StudentID).Msg("failed to store submission")
		return fail(err, "store_failed")
	}

	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, payload.StudentID)
	}

	span.SetAttributes(attribute.String("submission.status", string(target)))
	return dto.NewSubmissionStatusResponse(&grade), nil
}

// cleanContent strips markup and rejects binary payloads.
func (s *submissionService) cleanContent(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	detected := mimetype.Detect([]byte(raw))
	if !isTextual(detected) {
		return "", ErrUnsupportedContent
	}

	return plainText(s.sanitizer, raw), nil
}

func isTextual(detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func (s *submissionService) ensureParticipants(ctx context.Context, assignmentID, studentID uint) error {
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("load assignment: %w", err)
	}
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("load student: %w", err)
	}
	return nil
}
