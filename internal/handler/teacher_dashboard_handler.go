package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/service"
	"github.com/noah-isme/studyboard-api/internal/utils"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

// TeacherDashboardHandler exposes the raw teacher dashboard endpoints.
type TeacherDashboardHandler struct {
	dashboards service.TeacherDashboardService
	grading    service.GradingService
	logger     zerolog.Logger
}

// NewTeacherDashboardHandler creates a teacher dashboard handler.
func NewTeacherDashboardHandler(dashboards service.TeacherDashboardService, grading service.GradingService, logger zerolog.Logger) *TeacherDashboardHandler {
	return &TeacherDashboardHandler{
		dashboards: dashboards,
		grading:    grading,
		logger:     logger.With().Str("component", "teacher_dashboard_handler").Logger(),
	}
}

// Register attaches the teacher routes.
func (h *TeacherDashboardHandler) Register(router fiber.Router, guard Guard) {
	teacher := middleware.AuthOptions{Role: middleware.AuthRoleTeacher}
	router.Get("/teachers/:id/dashboard", protect(guard, h.getDashboard, teacher))
	router.Get("/teachers/:id/students", protect(guard, h.getStudents, teacher))
	router.Get("/teachers/:id/grading-queue", protect(guard, h.getGradingQueue, teacher))
}

// teacherParam parses the teacher id path parameter and checks it belongs to the caller.
func teacherParam(c *fiber.Ctx, name string) (uint, error) {
	teacherID, err := parseID(c, name)
	if err != nil {
		return 0, err
	}
	if !callerIs(c, viewmodel.Participant{ID: teacherID, Type: models.UserTypeTeacher}) {
		return 0, errNotOwner
	}
	return teacherID, nil
}

func (h *TeacherDashboardHandler) getDashboard(c *fiber.Ctx) error {
	teacherID, err := teacherParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid teacher")
	}

	dashboard, err := h.dashboards.GetDashboard(requestContext(c), teacherID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load dashboard")
	}

	return utils.SendJSON(c, fiber.StatusOK, dashboard)
}

func (h *TeacherDashboardHandler) getStudents(c *fiber.Ctx) error {
	teacherID, err := teacherParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid teacher")
	}

	students, err := h.dashboards.Students(requestContext(c), teacherID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load students")
	}

	return utils.SendJSON(c, fiber.StatusOK, students)
}

func (h *TeacherDashboardHandler) getGradingQueue(c *fiber.Ctx) error {
	teacherID, err := teacherParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid teacher")
	}

	queue, err := h.grading.Queue(requestContext(c), teacherID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load grading queue")
	}

	return utils.SendJSON(c, fiber.StatusOK, queue)
}
