package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/service"
	"github.com/noah-isme/studyboard-api/internal/utils"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

// SubmissionHandler manages the save-draft, submit and status endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router, guard Guard) {
	student := middleware.AuthOptions{Role: middleware.AuthRoleStudent}
	router.Post("/assignments/:id/save-draft", protect(guard, h.saveDraft, student))
	router.Post("/assignments/:id/submit", protect(guard, h.submit, student))
	router.Get("/assignments/:id/submission/:studentId", protect(guard, h.get, middleware.AuthOptions{OwnerParam: "studentId"}))
}

func (h *SubmissionHandler) saveDraft(c *fiber.Ctx) error {
	return h.write(c, h.service.SaveDraft, "failed to save draft")
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	return h.write(c, h.service.Submit, "failed to submit assignment")
}

type submissionWrite func(ctx context.Context, assignmentID uint, payload dto.SubmissionRequest) (dto.SubmissionStatusResponse, error)

func (h *SubmissionHandler) write(c *fiber.Ctx, fn submissionWrite, failure string) error {
	assignmentID, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	var payload dto.SubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !callerIs(c, viewmodel.Participant{ID: payload.StudentID, Type: models.UserTypeStudent}) {
		return respondError(c, h.logger, errNotOwner, failure)
	}

	status, err := fn(requestContext(c), assignmentID, payload)
	if err != nil {
		return respondError(c, h.logger, err, failure)
	}

	return utils.SendJSON(c, fiber.StatusOK, status)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	assignmentID, err := parseID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	status, err := h.service.Get(requestContext(c), assignmentID, studentID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load submission")
	}

	return utils.SendJSON(c, fiber.StatusOK, status)
}
