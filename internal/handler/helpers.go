package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/studyboard-api/internal/middleware"
	"github.com/noah-isme/studyboard-api/internal/service"
	"github.com/noah-isme/studyboard-api/internal/utils"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

var (
	errInvalidID = errors.New("invalid id")
	errNotOwner  = errors.New("insufficient permissions")
)

func parseID(c *fiber.Ctx, name string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || value == 0 {
		return 0, errInvalidID
	}
	return uint(value), nil
}

func parseQueryID(c *fiber.Ctx, key string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Query(key)), 10, 64)
	if err != nil || value == 0 {
		return 0, errInvalidID
	}
	return uint(value), nil
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
	}
	return details
}

// statusFor maps service errors onto HTTP statuses. Unknown errors are collaborator failures.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidID),
		errors.Is(err, service.ErrInvalidUserType),
		errors.Is(err, service.ErrSelfMessage),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrRecipientNotFound),
		errors.Is(err, service.ErrEmptySubmission),
		errors.Is(err, service.ErrUnsupportedContent),
		errors.Is(err, viewmodel.ErrInvalidScore),
		errors.Is(err, viewmodel.ErrScoreOutOfRange),
		isValidationError(err):
		return fiber.StatusBadRequest
	case errors.Is(err, errNotOwner):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrTeacherNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrGradeNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrTaskNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrSubmissionLocked),
		errors.Is(err, service.ErrNotSubmitted),
		errors.Is(err, service.ErrGradeExists):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the failure envelope. Collaborator failures are logged and
// reported with the generic message so internals never leak to clients.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, failure string) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg(failure)
		return utils.SendError(c, status, failure)
	}
	if details := validationDetails(err); details != nil {
		return utils.Fail(c, status, "validation failed", details)
	}
	return utils.SendError(c, status, err.Error())
}

// Guard wraps a route with role and ownership checks. The router passes
// middleware.WithAuth when authentication is required.
type Guard func(fiber.Handler, middleware.AuthOptions) fiber.Handler

// OpenGuard lets every request through.
func OpenGuard(h fiber.Handler, _ middleware.AuthOptions) fiber.Handler {
	return h
}

func protect(guard Guard, h fiber.Handler, opts middleware.AuthOptions) fiber.Handler {
	if guard == nil {
		return h
	}
	return guard(h, opts)
}

// callerIs reports whether the authenticated caller, if any, is the given participant.
// Anonymous requests pass; the router rejects them earlier when auth is required.
func callerIs(c *fiber.Ctx, participant viewmodel.Participant) bool {
	value := c.Locals("user_id")
	if value == nil {
		return true
	}
	id, ok := value.(uint)
	if !ok || id != participant.ID {
		return false
	}
	role, _ := c.Locals("user_role").(string)
	return role == "" || strings.EqualFold(role, string(participant.Type))
}
