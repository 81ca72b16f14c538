package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/repository"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

// DirectoryService lists the roster and resolves participants.
type DirectoryService interface {
	Students(ctx context.Context) ([]models.Student, error)
	Teachers(ctx context.Context) ([]models.Teacher, error)
	Classes(ctx context.Context) ([]models.Class, error)
	Lookup(ctx context.Context, participant viewmodel.Participant) (dto.SessionUser, error)
}

type directoryService struct {
	students repository.StudentRepository
	teachers repository.TeacherRepository
	classes  repository.ClassRepository
	logger   zerolog.Logger
}

// NewDirectoryService constructs the roster directory.
func NewDirectoryService(students repository.StudentRepository, teachers repository.TeacherRepository, classes repository.ClassRepository, logger zerolog.Logger) DirectoryService {
	return &directoryService{
		students: students,
		teachers: teachers,
		classes:  classes,
		logger:   logger.With().Str("component", "directory_service").Logger(),
	}
}

func (s *directoryService) Students(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

func (s *directoryService) Teachers(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, err
	}
	if teachers == nil {
		teachers = []models.Teacher{}
	}
	return teachers, nil
}

func (s *directoryService) Classes(ctx context.Context) ([]models.Class, error) {
	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, err
	}
	if classes == nil {
		classes = []models.Class{}
	}
	return classes, nil
}

// Lookup resolves a participant to its roster identity.
func (s *directoryService) Lookup(ctx context.Context, participant viewmodel.Participant) (dto.SessionUser, error) {
	switch participant.Type {
	case models.UserTypeStudent:
		student, err := s.students.GetByID(ctx, participant.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SessionUser{}, ErrStudentNotFound
			}
			return dto.SessionUser{}, err
		}
		return dto.SessionUser{ID: student.ID, Name: student.Name, Email: student.Email, Type: string(models.UserTypeStudent)}, nil
	case models.UserTypeTeacher:
		teacher, err := s.teachers.GetByID(ctx, participant.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SessionUser{}, ErrTeacherNotFound
			}
			return dto.SessionUser{}, err
		}
		return dto.SessionUser{ID: teacher.ID, Name: teacher.Name, Email: teacher.Email, Type: string(models.UserTypeTeacher)}, nil
	default:
		return dto.SessionUser{}, ErrInvalidUserType
	}
}
