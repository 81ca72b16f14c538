package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func jsonRequest(t *testing.T, method, path string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

// asCaller simulates the JWT middleware for ownership checks.
func asCaller(id uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", id)
		c.Locals("user_role", role)
		return c.Next()
	}
}

type errorBody struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func scorePtr(v float64) *float64 {
	return &v
}

type stubStudentDashboards struct {
	dashboard   dto.StudentDashboardResponse
	grades      []models.AssignmentWithGrade
	overview    viewmodel.StudentOverview
	plan        dto.StudyPlanResponse
	toggle      dto.TaskToggleResponse
	assignments dto.AssignmentListResponse
	err         error

	lastID     uint
	lastSort   viewmodel.TaskSort
	lastTask   viewmodel.TaskID
	lastFilter viewmodel.AssignmentFilter
	lastOrder  viewmodel.AssignmentSort
}

func (s *stubStudentDashboards) Invalidate(context.Context, uint) {}

func (s *stubStudentDashboards) GetDashboard(_ context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	s.lastID = studentID
	return s.dashboard, s.err
}

func (s *stubStudentDashboards) Grades(_ context.Context, studentID uint) ([]models.AssignmentWithGrade, error) {
	s.lastID = studentID
	return s.grades, s.err
}

func (s *stubStudentDashboards) Overview(_ context.Context, studentID uint, order viewmodel.TaskSort) (viewmodel.StudentOverview, error) {
	s.lastID, s.lastSort = studentID, order
	return s.overview, s.err
}

func (s *stubStudentDashboards) StudyPlan(_ context.Context, studentID uint, order viewmodel.TaskSort) (dto.StudyPlanResponse, error) {
	s.lastID, s.lastSort = studentID, order
	return s.plan, s.err
}

func (s *stubStudentDashboards) ToggleStudyTask(_ context.Context, studentID uint, taskID viewmodel.TaskID, order viewmodel.TaskSort) (dto.TaskToggleResponse, error) {
	s.lastID, s.lastTask, s.lastSort = studentID, taskID, order
	return s.toggle, s.err
}

func (s *stubStudentDashboards) Assignments(_ context.Context, studentID uint, filter viewmodel.AssignmentFilter, order viewmodel.AssignmentSort) (dto.AssignmentListResponse, error) {
	s.lastID, s.lastFilter, s.lastOrder = studentID, filter, order
	return s.assignments, s.err
}

type stubPerformance struct {
	samples []models.PerformanceSample
	err     error
}

func (s *stubPerformance) History(context.Context, uint) ([]models.PerformanceSample, error) {
	return s.samples, s.err
}

func (s *stubPerformance) Snapshot(context.Context) (int, error) {
	return 0, s.err
}

type stubGrading struct {
	queue     []models.GradingQueueItem
	queueView viewmodel.GradingQueue
	grade     models.Grade
	export    *bytes.Buffer
	filename  string
	err       error

	lastGradeID  uint
	lastRawScore string
	lastCreate   dto.CreateGradeRequest
}

func (s *stubGrading) Queue(context.Context, uint) ([]models.GradingQueueItem, error) {
	return s.queue, s.err
}

func (s *stubGrading) QueueView(context.Context, uint) (viewmodel.GradingQueue, error) {
	return s.queueView, s.err
}

func (s *stubGrading) Grade(_ context.Context, gradeID uint, rawScore string) (models.Grade, error) {
	s.lastGradeID, s.lastRawScore = gradeID, rawScore
	return s.grade, s.err
}

func (s *stubGrading) Create(_ context.Context, payload dto.CreateGradeRequest) (models.Grade, error) {
	s.lastCreate = payload
	return s.grade, s.err
}

func (s *stubGrading) Export(context.Context, uint) (*bytes.Buffer, string, error) {
	return s.export, s.filename, s.err
}

type stubTeacherDashboards struct {
	dashboard dto.TeacherDashboardResponse
	students  []models.Student
	plan      dto.TeacherPlanResponse
	toggle    dto.TaskToggleResponse
	feedback  dto.FeedbackResponse
	err       error

	lastStudentID  uint
	lastAssignment string
	lastTask       viewmodel.TaskID
}

func (s *stubTeacherDashboards) GetDashboard(context.Context, uint) (dto.TeacherDashboardResponse, error) {
	return s.dashboard, s.err
}

func (s *stubTeacherDashboards) Students(context.Context, uint) ([]models.Student, error) {
	return s.students, s.err
}

func (s *stubTeacherDashboards) AtRisk(context.Context, uint) ([]models.StudentPrediction, error) {
	return nil, s.err
}

func (s *stubTeacherDashboards) Plan(context.Context, uint, viewmodel.TaskSort) (dto.TeacherPlanResponse, error) {
	return s.plan, s.err
}

func (s *stubTeacherDashboards) TogglePlanTask(_ context.Context, _ uint, taskID viewmodel.TaskID, _ viewmodel.TaskSort) (dto.TaskToggleResponse, error) {
	s.lastTask = taskID
	return s.toggle, s.err
}

func (s *stubTeacherDashboards) Feedback(_ context.Context, _ uint, studentID uint, assignment string) (dto.FeedbackResponse, error) {
	s.lastStudentID, s.lastAssignment = studentID, assignment
	return s.feedback, s.err
}

type stubMessages struct {
	messages      []models.Message
	conversations []viewmodel.Conversation
	view          dto.ConversationsResponse
	sent          models.Message
	opened        dto.OpenConversationResponse
	err           error

	lastQuery dto.ParticipantQuery
	lastSend  dto.SendMessageRequest
	lastOpen  dto.OpenConversationRequest
	sendCalls int
}

func (s *stubMessages) List(_ context.Context, query dto.ParticipantQuery) ([]models.Message, error) {
	s.lastQuery = query
	return s.messages, s.err
}

func (s *stubMessages) Conversations(_ context.Context, query dto.ParticipantQuery) ([]viewmodel.Conversation, error) {
	s.lastQuery = query
	return s.conversations, s.err
}

func (s *stubMessages) ConversationsView(_ context.Context, query dto.ParticipantQuery) (dto.ConversationsResponse, error) {
	s.lastQuery = query
	return s.view, s.err
}

func (s *stubMessages) Send(_ context.Context, payload dto.SendMessageRequest) (models.Message, error) {
	s.sendCalls++
	s.lastSend = payload
	return s.sent, s.err
}

func (s *stubMessages) MarkRead(_ context.Context, id uint) (models.Message, error) {
	message := s.sent
	message.ID = id
	message.Read = true
	return message, s.err
}

func (s *stubMessages) Open(_ context.Context, payload dto.OpenConversationRequest) (dto.OpenConversationResponse, error) {
	s.lastOpen = payload
	return s.opened, s.err
}

func (s *stubMessages) Subscribe(viewmodel.Participant) (<-chan dto.InboxEvent, func()) {
	return make(chan dto.InboxEvent), func() {}
}

func (s *stubMessages) Start(context.Context) {}
