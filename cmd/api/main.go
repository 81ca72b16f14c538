package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/config"
	"github.com/noah-isme/studyboard-api/internal/database"
	"github.com/noah-isme/studyboard-api/internal/handler"
	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/repository"
	"github.com/noah-isme/studyboard-api/internal/router"
	"github.com/noah-isme/studyboard-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, inbox fan-out falls back to redis")
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)
	predictionRepo := repository.NewPredictionRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	progress := service.NewTaskProgressStore(redisClient)
	directoryService := service.NewDirectoryService(studentRepo, teacherRepo, classRepo, logger)
	predictionService := service.NewPredictionService(predictionRepo, performanceRepo, studentRepo, teacherRepo, logger)
	performanceService := service.NewPerformanceService(performanceRepo, studentRepo, gradeRepo, assignmentRepo, logger)
	studentDashboardService := service.NewStudentDashboardService(service.StudentDashboardDeps{
		Students:    studentRepo,
		Assignments: assignmentRepo,
		Grades:      gradeRepo,
		Performance: performanceRepo,
		Predictions: predictionService,
		Progress:    progress,
		Cache:       redisClient,
		CacheTTL:    cfg.DashboardCacheTTL,
		QuoteSeed:   cfg.QuoteSeed,
	}, logger)
	submissionService := service.NewSubmissionService(gradeRepo, assignmentRepo, studentRepo, studentDashboardService, validate, logger)
	gradingService := service.NewGradingService(service.GradingDeps{
		Grades:      gradeRepo,
		Teachers:    teacherRepo,
		Students:    studentRepo,
		Assignments: assignmentRepo,
		Dashboards:  studentDashboardService,
	}, validate, logger)
	teacherDashboardService := service.NewTeacherDashboardService(service.TeacherDashboardDeps{
		Teachers:    teacherRepo,
		Students:    studentRepo,
		Classes:     classRepo,
		Grades:      gradeRepo,
		Predictions: predictionService,
		Progress:    progress,
	}, logger)
	messageService := service.NewMessageService(service.MessageDeps{
		Messages:    messageRepo,
		Directory:   directoryService,
		Redis:       redisClient,
		NATS:        natsConn,
		ChannelBase: cfg.EventsChannel,
	}, validate, logger)
	sessionService := service.NewSessionService(directoryService, cfg.JWTSecret, cfg.JWTTTL, validate, logger)
	seedService := service.NewSeedService(service.SeedDeps{
		Students:    studentRepo,
		Teachers:    teacherRepo,
		Classes:     classRepo,
		Assignments: assignmentRepo,
		Grades:      gradeRepo,
		Performance: performanceRepo,
	}, cfg.SeedEnabled, cfg.SeedToken, logger)

	ctx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()
	messageService.Start(ctx)

	var scheduler *cron.Cron
	if cfg.SnapshotEnabled {
		scheduler, err = service.StartSnapshotScheduler(cfg.SnapshotSchedule, performanceService, logger)
		if err != nil {
			log.Fatalf("failed to schedule performance snapshots: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		SessionHandler:          handler.NewSessionHandler(sessionService, logger),
		SeedHandler:             handler.NewSeedHandler(seedService, logger),
		DirectoryHandler:        handler.NewDirectoryHandler(directoryService, logger),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(studentDashboardService, performanceService, logger),
		PredictionHandler:       handler.NewPredictionHandler(predictionService, logger),
		SubmissionHandler:       handler.NewSubmissionHandler(submissionService, logger),
		TeacherDashboardHandler: handler.NewTeacherDashboardHandler(teacherDashboardService, gradingService, logger),
		GradeHandler:            handler.NewGradeHandler(gradingService, logger),
		MessageHandler:          handler.NewMessageHandler(messageService, validate, cfg.MessageRateLimit, logger),
		StudentViewHandler:      handler.NewStudentViewHandler(studentDashboardService, logger),
		TeacherViewHandler:      handler.NewTeacherViewHandler(teacherDashboardService, gradingService, logger),
		ConversationViewHandler: handler.NewConversationViewHandler(messageService, validate, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, scheduler, cancelBackground)
}

func waitForShutdown(app *fiber.App, scheduler *cron.Cron, stopBackground context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
