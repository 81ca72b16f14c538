package handler

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/service"
	"github.com/noah-isme/studyboard-api/internal/utils"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

const (
	inboxParticipantKey = "inbox_participant"
	inboxPingInterval   = 30 * time.Second
	inboxWriteTimeout   = 10 * time.Second
)

// MessageHandler wires the messaging endpoints including the live inbox websocket.
type MessageHandler struct {
	service   service.MessageService
	validator *validator.Validate
	sendLimit int
	logger    zerolog.Logger
}

// NewMessageHandler creates a message handler. sendLimit caps POST /messages per caller per minute.
func NewMessageHandler(service service.MessageService, validator *validator.Validate, sendLimit int, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service:   service,
		validator: validator,
		sendLimit: sendLimit,
		logger:    logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register binds message routes under the provided router group.
func (h *MessageHandler) Register(router fiber.Router, guard Guard) {
	anyone := middleware.AuthOptions{Role: middleware.AuthRoleAny}

	router.Use("/messages/ws", h.upgrade)
	router.Get("/messages/ws", websocket.New(h.inbox))

	router.Get("/messages", protect(guard, h.list, anyone))
	router.Get("/conversations", protect(guard, h.conversations, anyone))
	router.Post("/messages", middleware.RateLimit("messages", h.sendLimit, time.Minute), protect(guard, h.send, anyone))
	router.Put("/messages/:id/read", protect(guard, h.markRead, anyone))
}

// participantQuery reads user_id and user_type from the query string and checks they name the caller.
func participantQuery(c *fiber.Ctx, validate *validator.Validate) (dto.ParticipantQuery, error) {
	var query dto.ParticipantQuery
	if err := c.QueryParser(&query); err != nil {
		return query, errInvalidID
	}
	if err := validate.Struct(query); err != nil {
		return query, err
	}
	if !callerIs(c, query.Participant()) {
		return query, errNotOwner
	}
	return query, nil
}

func (h *MessageHandler) list(c *fiber.Ctx) error {
	query, err := participantQuery(c, h.validator)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load messages")
	}

	messages, err := h.service.List(requestContext(c), query)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load messages")
	}

	return utils.SendJSON(c, fiber.StatusOK, messages)
}

func (h *MessageHandler) conversations(c *fiber.Ctx) error {
	query, err := participantQuery(c, h.validator)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load conversations")
	}

	conversations, err := h.service.Conversations(requestContext(c), query)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load conversations")
	}

	return utils.SendJSON(c, fiber.StatusOK, conversations)
}

func (h *MessageHandler) send(c *fiber.Ctx) error {
	var payload dto.SendMessageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	sender := viewmodel.Participant{ID: payload.SenderID, Type: models.UserType(payload.SenderType)}
	if !callerIs(c, sender) {
		return respondError(c, h.logger, errNotOwner, "failed to send message")
	}

	message, err := h.service.Send(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to send message")
	}

	return utils.SendJSON(c, fiber.StatusCreated, message)
}

func (h *MessageHandler) markRead(c *fiber.Ctx) error {
	messageID, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid message id")
	}

	message, err := h.service.MarkRead(requestContext(c), messageID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to mark message read")
	}

	return utils.SendJSON(c, fiber.StatusOK, message)
}

// upgrade validates the inbox owner before the websocket handshake.
func (h *MessageHandler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	query, err := participantQuery(c, h.validator)
	if err != nil {
		return respondError(c, h.logger, err, "failed to open inbox")
	}

	c.Locals(inboxParticipantKey, query.Participant())
	return c.Next()
}

func (h *MessageHandler) inbox(conn *websocket.Conn) {
	participant, ok := conn.Locals(inboxParticipantKey).(viewmodel.Participant)
	if !ok {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "participant missing"))
		_ = conn.Close()
		return
	}

	events, unsubscribe := h.service.Subscribe(participant)
	defer unsubscribe()
	defer conn.Close()

	logger := h.logger.With().Str("participant", participant.Key()).Logger()
	logger.Info().Msg("inbox websocket connected")
	defer logger.Info().Msg("inbox websocket disconnected")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeInboxEvent(conn, dto.InboxEvent{Type: service.InboxEventReady}); err != nil {
		return
	}

	ticker := time.NewTicker(inboxPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeInboxEvent(conn, event); err != nil {
				logger.Debug().Err(err).Msg("inbox write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(inboxWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeInboxEvent(conn *websocket.Conn, event dto.InboxEvent) error {
	_ = conn.SetWriteDeadline(time.Now().Add(inboxWriteTimeout))
	return conn.WriteJSON(event)
}
