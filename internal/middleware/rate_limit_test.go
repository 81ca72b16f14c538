package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRateLimitPerUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user := c.Get("X-User"); user != "" {
			c.Locals("user_id", user)
		}
		return c.Next()
	})
	app.Post("/messages", RateLimit("messages", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/messages", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusCreated, send("1"))
	require.Equal(t, fiber.StatusCreated, send("1"))
	require.Equal(t, fiber.StatusTooManyRequests, send("1"))
	require.Equal(t, fiber.StatusCreated, send("2"))
}
