package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/models"
)

func newGrading(s school, invalidator DashboardInvalidator) *gradingService {
	svc := NewGradingService(GradingDeps{
		Grades:      s.repos.grades,
		Teachers:    s.repos.teachers,
		Students:    s.repos.students,
		Assignments: s.repos.assignments,
		Dashboards:  invalidator,
	}, newValidator(), zerolog.Nop()).(*gradingService)
	svc.now = fixedClock(fixtureNow)
	return svc
}

func TestGradingServiceQueue(t *testing.T) {
	s := seedSchool(t)
	svc := newGrading(s, nil)
	ctx := context.Background()

	queue, err := svc.Queue(ctx, s.teacher.ID)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	require.Equal(t, "Quiz", queue[0].Assignment.Title)
	require.Equal(t, "Ada", queue[0].Student.Name)

	view, err := svc.QueueView(ctx, s.teacher.ID)
	require.NoError(t, err)
	require.Len(t, view.NeedsGrading, 1)
	require.Equal(t, s.adaEssay.ID, view.NeedsGrading[0].GradeID)
	require.False(t, view.NeedsGrading[0].IsLate)
	require.Len(t, view.NotSubmitted, 1)
	require.Equal(t, s.benQuiz.ID, view.NotSubmitted[0].GradeID)
	require.True(t, view.NotSubmitted[0].Overdue)
	require.Equal(t, 1, view.NotSubmitted[0].OverdueDays)

	empty, err := svc.Queue(ctx, s.other.ID)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = svc.Queue(ctx, 999)
	require.ErrorIs(t, err, ErrTeacherNotFound)
}

func TestGradingServiceGrade(t *testing.T) {
	s := seedSchool(t)
	invalidator := &recordingInvalidator{}
	svc := newGrading(s, invalidator)
	ctx := context.Background()

	graded, err := svc.Grade(ctx, s.adaEssay.ID, "88.5")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionGraded, graded.SubmissionStatus)
	require.Equal(t, 88.5, *graded.Score)
	require.Equal(t, []uint{s.ada.ID}, invalidator.students)

	regraded, err := svc.Grade(ctx, s.adaEssay.ID, "90")
	require.NoError(t, err)
	require.Equal(t, 90.0, *regraded.Score)

	_, err = svc.Grade(ctx, s.benQuiz.ID, "70")
	require.ErrorIs(t, err, ErrNotSubmitted)

	_, err = svc.Grade(ctx, 999, "70")
	require.ErrorIs(t, err, ErrGradeNotFound)

	for _, raw := range []string{"", "abc", "101", "-1", "NaN", "Inf"} {
		_, err = svc.Grade(ctx, s.adaEssay.ID, raw)
		require.Error(t, err, raw)
	}

	stored, err := s.repos.grades.GetByID(ctx, s.adaEssay.ID)
	require.NoError(t, err)
	require.Equal(t, 90.0, *stored.Score)
}

func TestGradingServiceCreate(t *testing.T) {
	s := seedSchool(t)
	svc := newGrading(s, nil)
	ctx := context.Background()

	grade, err := svc.Create(ctx, dto.CreateGradeRequest{StudentID: s.ben.ID, AssignmentID: s.lab.ID, Score: scorePtr(95)})
	require.NoError(t, err)
	require.NotZero(t, grade.ID)
	require.Equal(t, models.SubmissionGraded, grade.SubmissionStatus)
	require.Equal(t, models.CompletionCompleted, grade.CompletionStatus)

	_, err = svc.Create(ctx, dto.CreateGradeRequest{StudentID: s.ben.ID, AssignmentID: s.lab.ID})
	require.ErrorIs(t, err, ErrGradeExists)

	_, err = svc.Create(ctx, dto.CreateGradeRequest{StudentID: 999, AssignmentID: s.lab.ID})
	require.ErrorIs(t, err, ErrStudentNotFound)

	_, err = svc.Create(ctx, dto.CreateGradeRequest{StudentID: s.ben.ID, AssignmentID: s.essay.ID, SubmissionStatus: "lost"})
	require.Error(t, err)
}

func TestGradingServiceExport(t *testing.T) {
	s := seedSchool(t)
	svc := newGrading(s, nil)

	buf, filename, err := svc.Export(context.Background(), s.teacher.ID)
	require.NoError(t, err)
	require.Equal(t, "gradebook_teacher_1_20240311.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(gradebookSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, []string{"Student", "Assignment", "Subject", "Due", "Status", "Submitted", "Late", "Score"}, rows[0])
	require.Equal(t, "Ada", rows[1][0])
	require.Equal(t, "Quiz", rows[1][1])
	require.Equal(t, "55", rows[1][7])
}
