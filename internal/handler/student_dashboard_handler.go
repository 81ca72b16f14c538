package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/service"
	"github.com/noah-isme/studyboard-api/internal/utils"
)

// StudentDashboardHandler exposes the raw student dashboard, performance and grade endpoints.
type StudentDashboardHandler struct {
	dashboards  service.StudentDashboardService
	performance service.PerformanceService
	logger      zerolog.Logger
}

// NewStudentDashboardHandler creates a new handler instance.
func NewStudentDashboardHandler(dashboards service.StudentDashboardService, performance service.PerformanceService, logger zerolog.Logger) *StudentDashboardHandler {
	return &StudentDashboardHandler{
		dashboards:  dashboards,
		performance: performance,
		logger:      logger.With().Str("component", "student_dashboard_handler").Logger(),
	}
}

// Register attaches the student endpoints.
func (h *StudentDashboardHandler) Register(router fiber.Router, guard Guard) {
	owner := middleware.AuthOptions{OwnerParam: "id"}
	router.Get("/students/:id/dashboard", protect(guard, h.getDashboard, owner))
	router.Get("/students/:id/performance", protect(guard, h.getPerformance, owner))
	router.Get("/students/:id/grades", protect(guard, h.getGrades, owner))
}

func (h *StudentDashboardHandler) getDashboard(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	dashboard, err := h.dashboards.GetDashboard(requestContext(c), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load dashboard")
	}

	return utils.SendJSON(c, fiber.StatusOK, dashboard)
}

func (h *StudentDashboardHandler) getPerformance(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	samples, err := h.performance.History(requestContext(c), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load performance")
	}

	return utils.SendJSON(c, fiber.StatusOK, samples)
}

func (h *StudentDashboardHandler) getGrades(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	grades, err := h.dashboards.Grades(requestContext(c), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load grades")
	}

	return utils.SendJSON(c, fiber.StatusOK, grades)
}
