package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/handler"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/service"
)

type stubSubmissions struct {
	status      dto.SubmissionStatusResponse
	err         error
	lastAction  string
	lastAssign  uint
	lastPayload dto.SubmissionRequest
	lastStudent uint
}

func (s *stubSubmissions) SaveDraft(_ context.Context, assignmentID uint, payload dto.SubmissionRequest) (dto.SubmissionStatusResponse, error) {
	s.lastAction, s.lastAssign, s.lastPayload = "draft", assignmentID, payload
	return s.status, s.err
}

func (s *stubSubmissions) Submit(_ context.Context, assignmentID uint, payload dto.SubmissionRequest) (dto.SubmissionStatusResponse, error) {
	s.lastAction, s.lastAssign, s.lastPayload = "submit", assignmentID, payload
	return s.status, s.err
}

func (s *stubSubmissions) Get(_ context.Context, assignmentID, studentID uint) (dto.SubmissionStatusResponse, error) {
	s.lastAction, s.lastAssign, s.lastStudent = "get", assignmentID, studentID
	return s.status, s.err
}

func newSubmissionApp(svc *stubSubmissions, pre ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handler.NewSubmissionHandler(svc, zerolog.Nop()).Register(app.Group("/api", pre...), handler.OpenGuard)
	return app
}

func TestSubmissionHandler_SaveDraftAndSubmit(t *testing.T) {
	svc := &stubSubmissions{status: dto.SubmissionStatusResponse{SubmissionStatus: models.SubmissionInProgress, SubmissionContent: "notes"}}
	app := newSubmissionApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/assignments/3/save-draft", dto.SubmissionRequest{StudentID: 7, Content: "notes"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "draft", svc.lastAction)
	require.Equal(t, uint(3), svc.lastAssign)

	var status dto.SubmissionStatusResponse
	decodeResponse(t, resp, &status)
	require.Equal(t, models.SubmissionInProgress, status.SubmissionStatus)

	svc.err = service.ErrSubmissionLocked
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/assignments/3/submit", dto.SubmissionRequest{StudentID: 7, Content: "final"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Equal(t, "submit", svc.lastAction)
}

func TestSubmissionHandler_RejectsOtherStudentsBody(t *testing.T) {
	svc := &stubSubmissions{}
	app := newSubmissionApp(svc, asCaller(8, "student"))

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/assignments/3/submit", dto.SubmissionRequest{StudentID: 7, Content: "final"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Empty(t, svc.lastAction)
}

func TestSubmissionHandler_GetStatus(t *testing.T) {
	svc := &stubSubmissions{status: dto.SubmissionStatusResponse{SubmissionStatus: models.SubmissionNotStarted}}
	app := newSubmissionApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/assignments/3/submission/7", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastStudent)

	var payload map[string]interface{}
	decodeResponse(t, resp, &payload)
	require.Equal(t, "not_started", payload["submission_status"])
	require.Equal(t, "", payload["submission_content"])

	svc.err = service.ErrAssignmentNotFound
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/assignments/99/submission/7", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
