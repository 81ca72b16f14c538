package router_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/studyboard-api/internal/config"
	"github.com/noah-isme/studyboard-api/internal/database"
	"github.com/noah-isme/studyboard-api/internal/handler"
	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/repository"
	"github.com/noah-isme/studyboard-api/internal/router"
	"github.com/noah-isme/studyboard-api/internal/service"
)

const (
	seedToken = "seed-secret"
	jwtSecret = "test-secret"
)

func setupApp(t *testing.T, authRequired bool) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mini := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	cfg := config.Config{
		AppName:           "studyboard-test",
		AppEnv:            "test",
		EventsChannel:     "studyboard:test",
		JWTSecret:         jwtSecret,
		JWTTTL:            time.Hour,
		AuthRequired:      authRequired,
		DashboardCacheTTL: time.Minute,
		SeedEnabled:       true,
		SeedToken:         seedToken,
		MessageRateLimit:  100,
		QuoteSeed:         7,
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	log := zerolog.New(io.Discard)

	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)
	predictionRepo := repository.NewPredictionRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	progress := service.NewTaskProgressStore(redisClient)
	directory := service.NewDirectoryService(studentRepo, teacherRepo, classRepo, log)
	predictions := service.NewPredictionService(predictionRepo, performanceRepo, studentRepo, teacherRepo, log)
	performance := service.NewPerformanceService(performanceRepo, studentRepo, gradeRepo, assignmentRepo, log)
	dashboards := service.NewStudentDashboardService(service.StudentDashboardDeps{
		Students:    studentRepo,
		Assignments: assignmentRepo,
		Grades:      gradeRepo,
		Performance: performanceRepo,
		Predictions: predictions,
		Progress:    progress,
		Cache:       redisClient,
		CacheTTL:    cfg.DashboardCacheTTL,
		QuoteSeed:   cfg.QuoteSeed,
	}, log)
	submissions := service.NewSubmissionService(gradeRepo, assignmentRepo, studentRepo, dashboards, validate, log)
	grading := service.NewGradingService(service.GradingDeps{
		Grades:      gradeRepo,
		Teachers:    teacherRepo,
		Students:    studentRepo,
		Assignments: assignmentRepo,
		Dashboards:  dashboards,
	}, validate, log)
	teachers := service.NewTeacherDashboardService(service.TeacherDashboardDeps{
		Teachers:    teacherRepo,
		Students:    studentRepo,
		Classes:     classRepo,
		Grades:      gradeRepo,
		Predictions: predictions,
		Progress:    progress,
	}, log)
	messages := service.NewMessageService(service.MessageDeps{
		Messages:    messageRepo,
		Directory:   directory,
		Redis:       redisClient,
		ChannelBase: cfg.EventsChannel,
	}, validate, log)
	sessions := service.NewSessionService(directory, cfg.JWTSecret, cfg.JWTTTL, validate, log)
	seeds := service.NewSeedService(service.SeedDeps{
		Students:    studentRepo,
		Teachers:    teacherRepo,
		Classes:     classRepo,
		Assignments: assignmentRepo,
		Grades:      gradeRepo,
		Performance: performanceRepo,
	}, cfg.SeedEnabled, cfg.SeedToken, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	messages.Start(ctx)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &log})
	router.Register(app, cfg, router.Dependencies{
		SessionHandler:          handler.NewSessionHandler(sessions, log),
		SeedHandler:             handler.NewSeedHandler(seeds, log),
		DirectoryHandler:        handler.NewDirectoryHandler(directory, log),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboards, performance, log),
		PredictionHandler:       handler.NewPredictionHandler(predictions, log),
		SubmissionHandler:       handler.NewSubmissionHandler(submissions, log),
		TeacherDashboardHandler: handler.NewTeacherDashboardHandler(teachers, grading, log),
		GradeHandler:            handler.NewGradeHandler(grading, log),
		MessageHandler:          handler.NewMessageHandler(messages, validate, cfg.MessageRateLimit, log),
		StudentViewHandler:      handler.NewStudentViewHandler(dashboards, log),
		TeacherViewHandler:      handler.NewTeacherViewHandler(teachers, grading, log),
		ConversationViewHandler: handler.NewConversationViewHandler(messages, validate, log),
	})

	return app
}

func seedRoster(t *testing.T, app *fiber.App) {
	t.Helper()
	req := request(t, http.MethodPost, "/api/seed/roster", nil)
	req.Header.Set("X-Seed-Token", seedToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func request(t *testing.T, method, path string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = strings.NewReader(string(data))
	}
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var target T
	require.NoError(t, json.Unmarshal(body, &target), string(body))
	return target
}
