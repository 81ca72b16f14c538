package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/database"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/repository"
)

var fixtureNow = time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC)

type repos struct {
	students    repository.StudentRepository
	teachers    repository.TeacherRepository
	classes     repository.ClassRepository
	assignments repository.AssignmentRepository
	grades      repository.GradeRepository
	performance repository.PerformanceRepository
	predictions repository.PredictionRepository
	messages    repository.MessageRepository
}

type school struct {
	db      *gorm.DB
	repos   repos
	teacher models.Teacher
	other   models.Teacher
	ada     models.Student
	ben     models.Student
	essay   models.Assignment
	quiz    models.Assignment
	lab     models.Assignment
	// ada: quiz graded 55, essay submitted. ben: quiz in progress.
	adaQuiz  models.Grade
	adaEssay models.Grade
	benQuiz  models.Grade
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newRepos(db *gorm.DB) repos {
	return repos{
		students:    repository.NewStudentRepository(db),
		teachers:    repository.NewTeacherRepository(db),
		classes:     repository.NewClassRepository(db),
		assignments: repository.NewAssignmentRepository(db),
		grades:      repository.NewGradeRepository(db),
		performance: repository.NewPerformanceRepository(db),
		predictions: repository.NewPredictionRepository(db),
		messages:    repository.NewMessageRepository(db),
	}
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func scorePtr(v float64) *float64 {
	return &v
}

func seedSchool(t *testing.T) school {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)
	s := school{db: db, repos: newRepos(db)}

	s.teacher = models.Teacher{Name: "Ms. Rivera", Email: "rivera@school.test"}
	s.other = models.Teacher{Name: "Mr. Chen", Email: "chen@school.test"}
	require.NoError(t, s.repos.teachers.Create(ctx, &s.teacher))
	require.NoError(t, s.repos.teachers.Create(ctx, &s.other))

	s.ada = models.Student{Name: "Ada", Email: "ada@school.test"}
	s.ben = models.Student{Name: "Ben", Email: "ben@school.test"}
	require.NoError(t, s.repos.students.Create(ctx, &s.ada))
	require.NoError(t, s.repos.students.Create(ctx, &s.ben))

	class := models.Class{Name: "Algebra I", Subject: "Math", TeacherID: s.teacher.ID}
	require.NoError(t, s.repos.classes.Create(ctx, &class))
	require.NoError(t, s.repos.classes.Enroll(ctx, class.ID, s.ada, s.ben))

	s.quiz = models.Assignment{Title: "Quiz", Subject: "Math", DueDate: fixtureNow.Add(-24 * time.Hour), ClassID: class.ID, TeacherID: s.teacher.ID}
	s.lab = models.Assignment{Title: "Lab", Subject: "Science", DueDate: fixtureNow.Add(24 * time.Hour), ClassID: class.ID, TeacherID: s.teacher.ID}
	s.essay = models.Assignment{Title: "Essay", Subject: "English", DueDate: fixtureNow.Add(48 * time.Hour), ClassID: class.ID, TeacherID: s.teacher.ID}
	for _, a := range []*models.Assignment{&s.quiz, &s.lab, &s.essay} {
		require.NoError(t, s.repos.assignments.Create(ctx, a))
	}

	quizSubmitted := fixtureNow.Add(-30 * time.Hour)
	essaySubmitted := fixtureNow.Add(-2 * time.Hour)
	s.adaQuiz = models.Grade{
		StudentID: s.ada.ID, AssignmentID: s.quiz.ID, Score: scorePtr(55),
		CompletionStatus: models.CompletionCompleted, SubmissionStatus: models.SubmissionGraded,
		SubmissionContent: "my answers", SubmittedAt: &quizSubmitted,
	}
	s.adaEssay = models.Grade{
		StudentID: s.ada.ID, AssignmentID: s.essay.ID,
		CompletionStatus: models.CompletionCompleted, SubmissionStatus: models.SubmissionSubmitted,
		SubmissionContent: "essay text", SubmittedAt: &essaySubmitted,
	}
	s.benQuiz = models.Grade{
		StudentID: s.ben.ID, AssignmentID: s.quiz.ID,
		CompletionStatus: models.CompletionInProgress, SubmissionStatus: models.SubmissionInProgress,
		SubmissionContent: "draft",
	}
	for _, g := range []*models.Grade{&s.adaQuiz, &s.adaEssay, &s.benQuiz} {
		require.NoError(t, s.repos.grades.Create(ctx, g))
	}

	for _, sample := range []models.PerformanceSample{
		{StudentID: s.ada.ID, WeekNumber: 1, AvgGrade: 80, CompletionRate: 0.9},
		{StudentID: s.ada.ID, WeekNumber: 2, AvgGrade: 55, CompletionRate: 0.5},
	} {
		sample := sample
		require.NoError(t, s.repos.performance.Upsert(ctx, &sample))
	}

	require.NoError(t, s.repos.predictions.Upsert(ctx, &models.PredictionRecord{
		StudentID:      s.ben.ID,
		RiskLevel:      string(models.RiskMedium),
		AvgGrade:       70,
		CompletionRate: 0.7,
		AtRiskSubjects: datatypes.JSONSlice[models.AtRiskSubject]{
			{Assignment: "Essay", Subject: "English", StuckPercentage: 40},
			{Assignment: "Quiz", Subject: "Math", Grade: scorePtr(68), StuckPercentage: 25},
		},
		StudyTips: datatypes.NewJSONType(map[string][]string{"English": {"Outline first"}}),
	}))

	return s
}

func newPredictions(s school) PredictionService {
	return NewPredictionService(s.repos.predictions, s.repos.performance, s.repos.students, s.repos.teachers, zerolog.Nop())
}
