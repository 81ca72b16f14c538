package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/service"
	"github.com/noah-isme/studyboard-api/internal/utils"
)

// DirectoryHandler lists the roster used by the login picker.
type DirectoryHandler struct {
	service service.DirectoryService
	logger  zerolog.Logger
}

// NewDirectoryHandler constructs a directory handler.
func NewDirectoryHandler(service service.DirectoryService, logger zerolog.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		service: service,
		logger:  logger.With().Str("component", "directory_handler").Logger(),
	}
}

// Register wires the roster routes.
func (h *DirectoryHandler) Register(router fiber.Router, guard Guard) {
	anyone := middleware.AuthOptions{Role: middleware.AuthRoleAny}
	router.Get("/students", protect(guard, h.students, anyone))
	router.Get("/teachers", protect(guard, h.teachers, anyone))
	router.Get("/classes", protect(guard, h.classes, anyone))
}

func (h *DirectoryHandler) students(c *fiber.Ctx) error {
	students, err := h.service.Students(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list students")
	}
	return utils.SendJSON(c, fiber.StatusOK, students)
}

func (h *DirectoryHandler) teachers(c *fiber.Ctx) error {
	teachers, err := h.service.Teachers(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list teachers")
	}
	return utils.SendJSON(c, fiber.StatusOK, teachers)
}

func (h *DirectoryHandler) classes(c *fiber.Ctx) error {
	classes, err := h.service.Classes(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list classes")
	}
	return utils.SendJSON(c, fiber.StatusOK, classes)
}
