package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/service"
	"github.com/noah-isme/studyboard-api/internal/utils"
)

// PredictionHandler exposes stored or fallback risk predictions.
type PredictionHandler struct {
	service service.PredictionService
	logger  zerolog.Logger
}

// NewPredictionHandler constructs a prediction handler.
func NewPredictionHandler(service service.PredictionService, logger zerolog.Logger) *PredictionHandler {
	return &PredictionHandler{
		service: service,
		logger:  logger.With().Str("component", "prediction_handler").Logger(),
	}
}

// Register wires the prediction routes.
func (h *PredictionHandler) Register(router fiber.Router, guard Guard) {
	router.Get("/predictions/at-risk/:teacherId", protect(guard, h.atRisk, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))
	router.Get("/predictions/:id", protect(guard, h.forStudent, middleware.AuthOptions{OwnerParam: "id"}))
}

func (h *PredictionHandler) forStudent(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	prediction, err := h.service.ForStudent(requestContext(c), studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load prediction")
	}

	return utils.SendJSON(c, fiber.StatusOK, prediction)
}

func (h *PredictionHandler) atRisk(c *fiber.Ctx) error {
	teacherID, err := parseID(c, "teacherId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid teacher id")
	}

	students, err := h.service.AtRiskForTeacher(requestContext(c), teacherID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load at-risk students")
	}

	return utils.SendJSON(c, fiber.StatusOK, students)
}
