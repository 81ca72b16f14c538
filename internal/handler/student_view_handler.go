package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/service"
	"github.com/noah-isme/studyboard-api/internal/utils"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

// StudentViewHandler serves the render-ready student dashboard views.
type StudentViewHandler struct {
	service service.StudentDashboardService
	logger  zerolog.Logger
}

// NewStudentViewHandler creates a student view handler.
func NewStudentViewHandler(service service.StudentDashboardService, logger zerolog.Logger) *StudentViewHandler {
	return &StudentViewHandler{
		service: service,
		logger:  logger.With().Str("component", "student_view_handler").Logger(),
	}
}

// Register attaches the student views.
func (h *StudentViewHandler) Register(router fiber.Router, guard Guard) {
	owner := middleware.AuthOptions{OwnerParam: "id"}
	router.Get("/students/:id/overview", protect(guard, h.overview, owner))
	router.Get("/students/:id/study-plan", protect(guard, h.studyPlan, owner))
	router.Post("/students/:id/study-plan/:taskId/toggle", protect(guard, h.toggle, owner))
	router.Get("/students/:id/assignments", protect(guard, h.assignments, owner))
}

func (h *StudentViewHandler) overview(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	overview, err := h.service.Overview(requestContext(c), studentID, viewmodel.ParseTaskSort(c.Query("sort")))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load overview")
	}

	return utils.SendSuccess(c, "overview retrieved", overview)
}

func (h *StudentViewHandler) studyPlan(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	plan, err := h.service.StudyPlan(requestContext(c), studentID, viewmodel.ParseTaskSort(c.Query("sort")))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load study plan")
	}

	return utils.SendSuccess(c, "study plan retrieved", plan)
}

func (h *StudentViewHandler) toggle(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}
	taskID := strings.TrimSpace(c.Params("taskId"))
	if taskID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "task id required")
	}

	result, err := h.service.ToggleStudyTask(requestContext(c), studentID, viewmodel.TaskID(taskID), viewmodel.ParseTaskSort(c.Query("sort")))
	if err != nil {
		return respondError(c, h.logger, err, "failed to toggle task")
	}

	return utils.SendSuccess(c, "task updated", result)
}

func (h *StudentViewHandler) assignments(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	filter := viewmodel.ParseAssignmentFilter(c.Query("filter"))
	order := viewmodel.ParseAssignmentSort(c.Query("sort"))
	list, err := h.service.Assignments(requestContext(c), studentID, filter, order)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load assignments")
	}

	return utils.SendSuccess(c, "assignments retrieved", list)
}
