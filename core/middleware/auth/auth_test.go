package auth_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"tinyflow/core/access"
	"tinyflow/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "s3cr3t-key"

func newApp(cfg auth.Config) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(cfg))
	handler := func(c *fiber.Ctx) error {
		return c.SendString("user=" + auth.User(c))
	}
	app.Get("/runs", handler)
	app.Post("/runs", handler)
	return app
}

func TestAuth(t *testing.T) {
	app := newApp(auth.Config{ApiKey: testKey, Superusers: access.NewSet([]string{"pi57", "ka429"})})

	tests := []struct {
		name   string
		method string
		key    string
		user   string
		want   int
		body   string
	}{
		{"ReadWithoutKey", "GET", "", "", fiber.StatusUnauthorized, ""},
		{"ReadWithWrongKey", "GET", "guess", "", fiber.StatusUnauthorized, ""},
		{"ReadWithKey", "GET", testKey, "", fiber.StatusOK, "user="},
		{"WriteWithoutKey", "POST", "", "ka429", fiber.StatusUnauthorized, ""},
		{"WriteWithoutUser", "POST", testKey, "", fiber.StatusUnauthorized, ""},
		{"WriteByStranger", "POST", testKey, "eve", fiber.StatusForbidden, ""},
		{"WriteBySuperuser", "POST", testKey, "ka429", fiber.StatusOK, "user=ka429"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/runs", nil)
			if tt.key != "" {
				req.Header.Set(auth.KeyHeader, tt.key)
			}
			if tt.user != "" {
				req.Header.Set(auth.DefaultHeader, tt.user)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)

			if tt.body != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.body, string(body))
			}
		})
	}
}

func TestAuth_NoKeyConfigured(t *testing.T) {
	app := newApp(auth.Config{Superusers: access.NewSet([]string{"ka429"})})

	resp, err := app.Test(httptest.NewRequest("GET", "/runs", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest("POST", "/runs", nil)
	req.Header.Set(auth.DefaultHeader, "ka429")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_CustomHeaderAndMethods(t *testing.T) {
	app := newApp(auth.Config{
		ApiKey:     testKey,
		Superusers: access.NewSet([]string{"ka429"}),
		Header:     "X-User",
		Methods:    []string{fiber.MethodGet, fiber.MethodPost},
	})

	req := httptest.NewRequest("GET", "/runs", nil)
	req.Header.Set(auth.KeyHeader, testKey)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/runs", nil)
	req.Header.Set(auth.KeyHeader, testKey)
	req.Header.Set("X-User", "ka429")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
