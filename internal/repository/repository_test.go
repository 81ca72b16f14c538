package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Teacher{},
		&models.Class{},
		&models.Assignment{},
		&models.Grade{},
		&models.PerformanceSample{},
		&models.PredictionRecord{},
		&models.Message{},
	))
	return db
}

type fixture struct {
	teacher    models.Teacher
	other      models.Teacher
	class      models.Class
	otherClass models.Class
	ada        models.Student
	ben        models.Student
	outsider   models.Student
	essay      models.Assignment
	quiz       models.Assignment
	unrelated  models.Assignment
}

func seedFixture(t *testing.T, db *gorm.DB, now time.Time) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		teacher:  models.Teacher{Name: "Ms. Rivera", Email: "rivera@school.test"},
		other:    models.Teacher{Name: "Mr. Chen", Email: "chen@school.test"},
		ada:      models.Student{Name: "Ada", Email: "ada@school.test"},
		ben:      models.Student{Name: "Ben", Email: "ben@school.test"},
		outsider: models.Student{Name: "Zed", Email: "zed@school.test"},
	}
	require.NoError(t, db.Create(&f.teacher).Error)
	require.NoError(t, db.Create(&f.other).Error)
	require.NoError(t, db.Create(&f.ada).Error)
	require.NoError(t, db.Create(&f.ben).Error)
	require.NoError(t, db.Create(&f.outsider).Error)

	classes := NewClassRepository(db)
	f.class = models.Class{Name: "Algebra I", Subject: "Math", TeacherID: f.teacher.ID}
	f.otherClass = models.Class{Name: "Biology", Subject: "Science", TeacherID: f.other.ID}
	require.NoError(t, classes.Create(ctx, &f.class))
	require.NoError(t, classes.Create(ctx, &f.otherClass))
	require.NoError(t, classes.Enroll(ctx, f.class.ID, f.ada, f.ben))
	require.NoError(t, classes.Enroll(ctx, f.otherClass.ID, f.outsider))

	f.essay = models.Assignment{Title: "Essay", Subject: "Math", DueDate: now.Add(48 * time.Hour), ClassID: f.class.ID, TeacherID: f.teacher.ID}
	f.quiz = models.Assignment{Title: "Quiz", Subject: "Math", DueDate: now.Add(-24 * time.Hour), ClassID: f.class.ID, TeacherID: f.teacher.ID}
	f.unrelated = models.Assignment{Title: "Cells", Subject: "Science", DueDate: now, ClassID: f.otherClass.ID, TeacherID: f.other.ID}
	for _, a := range []*models.Assignment{&f.essay, &f.quiz, &f.unrelated} {
		require.NoError(t, db.Create(a).Error)
	}

	return f
}

func TestStudentRepositoryListByTeacher(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db, time.Now())
	repo := NewStudentRepository(db)

	students, err := repo.ListByTeacher(context.Background(), f.teacher.ID)
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.Equal(t, "Ada", students[0].Name)
	require.Equal(t, "Ben", students[1].Name)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestClassRepositorySummaries(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db, time.Now())
	repo := NewClassRepository(db)

	summaries, err := repo.ListSummariesByTeacher(context.Background(), f.teacher.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "Algebra I", summaries[0].Class.Name)
	require.EqualValues(t, 2, summaries[0].StudentCount)
	require.EqualValues(t, 2, summaries[0].AssignmentCount)

	empty, err := repo.ListSummariesByTeacher(context.Background(), 999)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestAssignmentRepositoryScopesToEnrollment(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()
	f := seedFixture(t, db, now)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	assignments, err := repo.ListForStudent(ctx, f.ada.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	require.Equal(t, "Quiz", assignments[0].Title)

	require.Equal(t, "Essay", assignments[1].Title)

	count, err := repo.CountForStudent(ctx, f.outsider.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestGradeRepositoryQueueAndLookup(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db, time.Now())
	repo := NewGradeRepository(db)
	ctx := context.Background()

	score := 88.0
	rows := []*models.Grade{
		{StudentID: f.ada.ID, AssignmentID: f.essay.ID, SubmissionStatus: models.SubmissionSubmitted},
		{StudentID: f.ben.ID, AssignmentID: f.quiz.ID, SubmissionStatus: models.SubmissionGraded, Score: &score},
		{StudentID: f.outsider.ID, AssignmentID: f.unrelated.ID, SubmissionStatus: models.SubmissionSubmitted},
	}
	for _, row := range rows {
		require.NoError(t, repo.Create(ctx, row))
	}

	queue, err := repo.ListGradingQueue(ctx, f.teacher.ID)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	require.Equal(t, "Quiz", queue[0].Assignment.Title)
	require.Equal(t, "Ben", queue[0].Student.Name)
	require.Equal(t, rows[1].ID, queue[0].ID)

	found, err := repo.FindByStudentAssignment(ctx, f.ada.ID, f.essay.ID)
	require.NoError(t, err)
	require.Equal(t, rows[0].ID, found.ID)

	_, err = repo.FindByStudentAssignment(ctx, f.ada.ID, f.quiz.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	byStudent, err := repo.ListByStudent(ctx, f.ben.ID)
	require.NoError(t, err)
	require.Len(t, byStudent, 1)
	require.Equal(t, "Quiz", byStudent[0].Assignment.Title)

	ids, err := repo.ListStudentIDs(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{f.ada.ID, f.ben.ID, f.outsider.ID}, ids)
}

func TestPerformanceRepositoryUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPerformanceRepository(db)
	ctx := context.Background()

	week, err := repo.LatestWeek(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, week)

	require.NoError(t, repo.Upsert(ctx, &models.PerformanceSample{StudentID: 1, WeekNumber: 2, AvgGrade: 70, CompletionRate: 0.5}))
	require.NoError(t, repo.Upsert(ctx, &models.PerformanceSample{StudentID: 1, WeekNumber: 1, AvgGrade: 80, CompletionRate: 0.9}))
	require.NoError(t, repo.Upsert(ctx, &models.PerformanceSample{StudentID: 1, WeekNumber: 2, AvgGrade: 72, CompletionRate: 0.6}))

	samples, err := repo.ListByStudent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	require.Equal(t, 1, samples[0].WeekNumber)
	require.Equal(t, 72.0, samples[1].AvgGrade)

	week, err = repo.LatestWeek(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, week)
}

func TestPredictionRepositoryRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPredictionRepository(db)
	ctx := context.Background()

	record := &models.PredictionRecord{
		StudentID:      7,
		RiskLevel:      string(models.RiskHigh),
		AvgGrade:       58,
		CompletionRate: 0.55,
		AtRiskSubjects: datatypes.JSONSlice[models.AtRiskSubject]{{Assignment: "Essay", Subject: "English", StuckPercentage: 0.4}},
		StudyTips:      datatypes.NewJSONType(map[string][]string{"English": {"Outline first"}}),
	}
	require.NoError(t, repo.Upsert(ctx, record))

	record.RiskLevel = string(models.RiskMedium)
	require.NoError(t, repo.Upsert(ctx, record))

	stored, err := repo.GetByStudent(ctx, 7)
	require.NoError(t, err)

	prediction := stored.ToPrediction()
	require.Equal(t, models.RiskMedium, prediction.RiskLevel)
	require.Len(t, prediction.AtRiskSubjects, 1)
	require.Equal(t, []string{"Outline first"}, prediction.StudyTips["English"])

	_, err = repo.GetByStudent(ctx, 8)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMessageRepositoryListAndMarkRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	messages := []*models.Message{
		{SenderID: 1, SenderType: models.UserTypeTeacher, RecipientID: 1, RecipientType: models.UserTypeStudent, Content: "hi", CreatedAt: base},
		{SenderID: 1, SenderType: models.UserTypeStudent, RecipientID: 1, RecipientType: models.UserTypeTeacher, Content: "hello", CreatedAt: base.Add(time.Minute)},
		{SenderID: 2, SenderType: models.UserTypeTeacher, RecipientID: 2, RecipientType: models.UserTypeStudent, Content: "other", CreatedAt: base},
	}
	for _, m := range messages {
		require.NoError(t, repo.Create(ctx, m))
	}

	inbox, err := repo.ListForUser(ctx, 1, models.UserTypeStudent)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	require.Equal(t, "hi", inbox[0].Content)

	changed, err := repo.MarkRead(ctx, []uint{messages[0].ID, messages[1].ID})
	require.NoError(t, err)
	require.EqualValues(t, 2, changed)

	changed, err = repo.MarkRead(ctx, []uint{messages[0].ID})
	require.NoError(t, err)
	require.Zero(t, changed)

	stored, err := repo.GetByID(ctx, messages[0].ID)
	require.NoError(t, err)
	require.True(t, stored.Read)
}
