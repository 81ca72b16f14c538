package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/service"
	"github.com/noah-isme/studyboard-api/internal/utils"
)

// ConversationViewHandler serves the threaded inbox view.
type ConversationViewHandler struct {
	service   service.MessageService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewConversationViewHandler creates a conversation view handler.
func NewConversationViewHandler(service service.MessageService, validator *validator.Validate, logger zerolog.Logger) *ConversationViewHandler {
	return &ConversationViewHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "conversation_view_handler").Logger(),
	}
}

// Register attaches the conversation views.
func (h *ConversationViewHandler) Register(router fiber.Router, guard Guard) {
	anyone := middleware.AuthOptions{Role: middleware.AuthRoleAny}
	router.Get("/conversations", protect(guard, h.list, anyone))
	router.Post("/conversations/open", protect(guard, h.open, anyone))
}

func (h *ConversationViewHandler) list(c *fiber.Ctx) error {
	query, err := participantQuery(c, h.validator)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load conversations")
	}

	view, err := h.service.ConversationsView(requestContext(c), query)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load conversations")
	}

	return utils.SendSuccess(c, "conversations retrieved", view)
}

func (h *ConversationViewHandler) open(c *fiber.Ctx) error {
	var payload dto.OpenConversationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !callerIs(c, payload.Viewer()) {
		return respondError(c, h.logger, errNotOwner, "failed to open conversation")
	}

	result, err := h.service.Open(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to open conversation")
	}

	return utils.SendSuccess(c, "conversation opened", result)
}
