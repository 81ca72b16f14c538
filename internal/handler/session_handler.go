package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/service"
	"github.com/noah-isme/studyboard-api/internal/utils"
)

// SessionHandler issues bearer tokens for users picked from the roster.
type SessionHandler struct {
	service service.SessionService
	logger  zerolog.Logger
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(service service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register wires the session route.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("/session", h.issue)
}

func (h *SessionHandler) issue(c *fiber.Ctx) error {
	var payload dto.SessionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Issue(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to issue session")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session issued", session)
}
