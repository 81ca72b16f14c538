package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/service"
	"github.com/noah-isme/studyboard-api/internal/utils"
)

// GradeHandler records scores and creates grade rows.
type GradeHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradeHandler constructs a grade handler.
func NewGradeHandler(service service.GradingService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register wires grading routes.
func (h *GradeHandler) Register(router fiber.Router, guard Guard) {
	teacher := middleware.AuthOptions{Role: middleware.AuthRoleTeacher}
	router.Post("/grades/:gradeId/grade", protect(guard, h.grade, teacher))
	router.Post("/grades", protect(guard, h.create, teacher))
}

func (h *GradeHandler) grade(c *fiber.Ctx) error {
	gradeID, err := parseID(c, "gradeId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid grade id")
	}

	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	grade, err := h.service.Grade(requestContext(c), gradeID, payload.RawScore())
	if err != nil {
		return respondError(c, h.logger, err, "failed to record grade")
	}

	return utils.SendJSON(c, fiber.StatusOK, grade)
}

func (h *GradeHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	grade, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create grade")
	}

	return utils.SendJSON(c, fiber.StatusCreated, grade)
}
