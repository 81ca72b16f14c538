package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyboard-api/internal/middleware"
)

func withUser(id uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", id)
		c.Locals("user_role", role)
		return c.Next()
	}
}

func TestWithAuthStudentRole(t *testing.T) {
	app := fiber.New()
	app.Use(withUser(10, "Student"))
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	}, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))

	resp := perform(t, app, "/")
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestWithAuthTeacherRoleDeniesStudents(t *testing.T) {
	app := fiber.New()
	app.Use(withUser(10, "student"))
	app.Post("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	}, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

type roleName string

func (r roleName) String() string { return string(r) }

func TestWithAuthNormalizesStoredRole(t *testing.T) {
	cases := []struct {
		name   string
		role   interface{}
		status int
	}{
		{name: "padded upper", role: "  TEACHER ", status: fiber.StatusNoContent},
		{name: "stringer", role: roleName("Teacher"), status: fiber.StatusNoContent},
		{name: "other role", role: "student", status: fiber.StatusForbidden},
		{name: "missing role", role: nil, status: fiber.StatusForbidden},
	}

	for _, tc := range cases {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(2))
			if tc.role != nil {
				c.Locals("user_role", tc.role)
			}
			return c.Next()
		})
		app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		}, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))

		resp := perform(t, app, "/")
		require.Equal(t, tc.status, resp.StatusCode, tc.name)
	}
}

func TestWithAuthOwnerParam(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-Role") != "" {
			c.Locals("user_id", uint(7))
			c.Locals("user_role", c.Get("X-Role"))
		}
		return c.Next()
	})
	app.Get("/students/:id", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{OwnerParam: "id"}))

	cases := []struct {
		path   string
		role   string
		status int
	}{
		{path: "/students/7", role: "student", status: fiber.StatusOK},
		{path: "/students/8", role: "student", status: fiber.StatusForbidden},
		{path: "/students/8", role: "teacher", status: fiber.StatusOK},
		{path: "/students/7", role: "", status: fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.role != "" {
			req.Header.Set("X-Role", tc.role)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, tc.status, resp.StatusCode, "%s as %q", tc.path, tc.role)
	}
}

func TestWithAuthAnyRequiresUserByDefault(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{Role: middleware.AuthRoleAny, RequireUser: true}))

	resp := perform(t, app, "/")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWithAuthAnyAllowsAnonymousWhenOptedIn(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}, middleware.AuthOptions{Role: middleware.AuthRoleAny}))

	resp := perform(t, app, "/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func perform(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
