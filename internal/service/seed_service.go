package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService creates the demo roster shown in the login picker.
type SeedService interface {
	SeedRoster(ctx context.Context, token string) (dto.SeedRosterResponse, error)
}

type seedService struct {
	students    repository.StudentRepository
	teachers    repository.TeacherRepository
	classes     repository.ClassRepository
	assignments repository.AssignmentRepository
	grades      repository.GradeRepository
	performance repository.PerformanceRepository
	enabled     bool
	token       string
	logger      zerolog.Logger
	now         func() time.Time
}

// SeedDeps groups the repositories the roster seed writes to.
type SeedDeps struct {
	Students    repository.StudentRepository
	Teachers    repository.TeacherRepository
	Classes     repository.ClassRepository
	Assignments repository.AssignmentRepository
	Grades      repository.GradeRepository
	Performance repository.PerformanceRepository
}

// NewSeedService constructs a seeding service.
func NewSeedService(deps SeedDeps, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		students:    deps.Students,
		teachers:    deps.Teachers,
		classes:     deps.Classes,
		assignments: deps.Assignments,
		grades:      deps.Grades,
		performance: deps.Performance,
		enabled:     enabled,
		token:       token,
		logger:      logger.With().Str("component", "seed_service").Logger(),
		now:         time.Now,
	}
}

type seedStudent struct {
	name   string
	scores []float64
	weekly [][2]float64
}

var demoStudents = []seedStudent{
	{name: "Alex Johnson", scores: []float64{92, 88}, weekly: [][2]float64{{90, 1}, {91, 1}}},
	{name: "Maria Garcia", scores: []float64{78, 72}, weekly: [][2]float64{{80, 0.9}, {74, 0.8}}},
	{name: "Sam Lee", scores: []float64{55, 48}, weekly: [][2]float64{{64, 0.7}, {52, 0.5}}},
	{name: "Priya Patel", scores: []float64{85}, weekly: [][2]float64{{84, 0.9}, {86, 0.95}}},
	{name: "Jordan Smith", scores: []float64{68}, weekly: [][2]float64{{72, 0.75}, {66, 0.7}}},
}

var demoAssignments = []struct {
	title   string
	subject string
	dueDays int
}{
	{title: "Algebra Quiz", subject: "Mathematics", dueDays: -7},
	{title: "Geometry Worksheet", subject: "Mathematics", dueDays: -2},
	{title: "History Essay", subject: "History", dueDays: 3},
	{title: "Lab Report", subject: "Science", dueDays: 6},
}

// SeedRoster writes the demo roster once. A roster that already has students is left untouched.
func (s *seedService) SeedRoster(ctx context.Context, token string) (dto.SeedRosterResponse, error) {
	if !s.enabled {
		return dto.SeedRosterResponse{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.SeedRosterResponse{}, ErrSeedUnauthorized
	}

	existing, err := s.students.List(ctx)
	if err != nil {
		return dto.SeedRosterResponse{}, err
	}
	if len(existing) > 0 {
		s.logger.Info().Int("students", len(existing)).Msg("roster already seeded")
		return dto.SeedRosterResponse{}, nil
	}

	now := s.now()
	var result dto.SeedRosterResponse

	teachers := []models.Teacher{
		{Name: "Ms. Rivera", Email: "rivera@studyboard.test"},
		{Name: "Mr. Chen", Email: "chen@studyboard.test"},
	}
	for i := range teachers {
		if err := s.teachers.Create(ctx, &teachers[i]); err != nil {
			return dto.SeedRosterResponse{}, fmt.Errorf("create teacher: %w", err)
		}
		result.Teachers++
	}

	students := make([]models.Student, 0, len(demoStudents))
	for _, demo := range demoStudents {
		student := models.Student{
			Name:  demo.name,
			Email: strings.ToLower(strings.ReplaceAll(demo.name, " ", ".")) + "@studyboard.test",
		}
		if err := s.students.Create(ctx, &student); err != nil {
			return dto.SeedRosterResponse{}, fmt.Errorf("create student: %w", err)
		}
		students = append(students, student)
		result.Students++
	}

	classes := []models.Class{
		{Name: "Period 1", Subject: "Mathematics", TeacherID: teachers[0].ID},
		{Name: "Period 3", Subject: "General Studies", TeacherID: teachers[1].ID},
	}
	for i := range classes {
		if err := s.classes.Create(ctx, &classes[i]); err != nil {
			return dto.SeedRosterResponse{}, fmt.Errorf("create class: %w", err)
		}
		result.Classes++
	}
	if err := s.classes.Enroll(ctx, classes[0].ID, students...); err != nil {
		return dto.SeedRosterResponse{}, fmt.Errorf("enroll students: %w", err)
	}
	if err := s.classes.Enroll(ctx, classes[1].ID, students[2:]...); err != nil {
		return dto.SeedRosterResponse{}, fmt.Errorf("enroll students: %w", err)
	}

	assignments := make([]models.Assignment, 0, len(demoAssignments))
	// The first two assignments belong to the class every student is enrolled in.
	for idx, demo := range demoAssignments {
		class := classes[idx/2]
		assignment := models.Assignment{
			Title:     demo.title,
			Subject:   demo.subject,
			DueDate:   now.AddDate(0, 0, demo.dueDays).Truncate(time.Hour),
			MaxPoints: 100,
			ClassID:   class.ID,
			TeacherID: class.TeacherID,
		}
		if err := s.assignments.Create(ctx, &assignment); err != nil {
			return dto.SeedRosterResponse{}, fmt.Errorf("create assignment: %w", err)
		}
		assignments = append(assignments, assignment)
		result.Assignments++
	}

	for idx, demo := range demoStudents {
		student := students[idx]
		for pos, score := range demo.scores {
			submittedAt := assignments[pos].DueDate.Add(-time.Hour)
			grade := models.Grade{
				StudentID:        student.ID,
				AssignmentID:     assignments[pos].ID,
				Score:            &score,
				CompletionStatus: models.CompletionCompleted,
				SubmissionStatus: models.SubmissionGraded,
				SubmittedAt:      &submittedAt,
			}
			if err := s.grades.Create(ctx, &grade); err != nil {
				return dto.SeedRosterResponse{}, fmt.Errorf("create grade: %w", err)
			}
		}
		for week, sample := range demo.weekly {
			record := models.PerformanceSample{
				StudentID:      student.ID,
				WeekNumber:     week + 1,
				AvgGrade:       sample[0],
				CompletionRate: sample[1],
			}
			if err := s.performance.Upsert(ctx, &record); err != nil {
				return dto.SeedRosterResponse{}, fmt.Errorf("store performance: %w", err)
			}
		}
	}

	s.logger.Info().
		Int("teachers", result.Teachers).
		Int("students", result.Students).
		Int("classes", result.Classes).
		Int("assignments", result.Assignments).
		Msg("roster seeded")

	return result, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}
