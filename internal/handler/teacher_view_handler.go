package handler

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/service"
	"github.com/noah-isme/studyboard-api/internal/utils"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TeacherViewHandler serves the teacher plan, grading queue, gradebook export and feedback views.
type TeacherViewHandler struct {
	dashboards service.TeacherDashboardService
	grading    service.GradingService
	logger     zerolog.Logger
}

// NewTeacherViewHandler creates a teacher view handler.
func NewTeacherViewHandler(dashboards service.TeacherDashboardService, grading service.GradingService, logger zerolog.Logger) *TeacherViewHandler {
	return &TeacherViewHandler{
		dashboards: dashboards,
		grading:    grading,
		logger:     logger.With().Str("component", "teacher_view_handler").Logger(),
	}
}

// Register attaches the teacher views.
func (h *TeacherViewHandler) Register(router fiber.Router, guard Guard) {
	teacher := middleware.AuthOptions{Role: middleware.AuthRoleTeacher}
	router.Get("/teachers/:id/plan", protect(guard, h.plan, teacher))
	router.Post("/teachers/:id/plan/:taskId/toggle", protect(guard, h.toggle, teacher))
	router.Get("/teachers/:id/grading-queue", protect(guard, h.gradingQueue, teacher))
	router.Get("/teachers/:id/grading-queue/export", protect(guard, h.export, teacher))
	router.Get("/teachers/:id/feedback", protect(guard, h.feedback, teacher))
}

func (h *TeacherViewHandler) plan(c *fiber.Ctx) error {
	teacherID, err := teacherParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid teacher")
	}

	plan, err := h.dashboards.Plan(requestContext(c), teacherID, viewmodel.ParseTaskSort(c.Query("sort")))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load plan")
	}

	return utils.SendSuccess(c, "plan retrieved", plan)
}

func (h *TeacherViewHandler) toggle(c *fiber.Ctx) error {
	teacherID, err := teacherParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid teacher")
	}
	taskID := strings.TrimSpace(c.Params("taskId"))
	if taskID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "task id required")
	}

	result, err := h.dashboards.TogglePlanTask(requestContext(c), teacherID, viewmodel.TaskID(taskID), viewmodel.ParseTaskSort(c.Query("sort")))
	if err != nil {
		return respondError(c, h.logger, err, "failed to toggle task")
	}

	return utils.SendSuccess(c, "task updated", result)
}

func (h *TeacherViewHandler) gradingQueue(c *fiber.Ctx) error {
	teacherID, err := teacherParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid teacher")
	}

	queue, err := h.grading.QueueView(requestContext(c), teacherID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load grading queue")
	}

	return utils.SendSuccess(c, "grading queue retrieved", queue)
}

func (h *TeacherViewHandler) export(c *fiber.Ctx) error {
	teacherID, err := teacherParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid teacher")
	}

	buffer, filename, err := h.grading.Export(requestContext(c), teacherID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to export gradebook")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Status(fiber.StatusOK).Send(buffer.Bytes())
}

func (h *TeacherViewHandler) feedback(c *fiber.Ctx) error {
	teacherID, err := teacherParam(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid teacher")
	}
	studentID, err := parseQueryID(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "student_id required")
	}
	assignment := strings.TrimSpace(c.Query("assignment"))
	if assignment == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "assignment required")
	}

	feedback, err := h.dashboards.Feedback(requestContext(c), teacherID, studentID, assignment)
	if err != nil {
		return respondError(c, h.logger, err, "failed to compose feedback")
	}

	return utils.SendSuccess(c, "feedback composed", feedback)
}
