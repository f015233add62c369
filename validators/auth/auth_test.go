package authValidator

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, isValidEmail("student@uni.example.edu"))
	assert.True(t, isValidEmail("first.last+tag@lab.io"))
	assert.False(t, isValidEmail("not-an-email"))
	assert.False(t, isValidEmail("user@localhost"))
	assert.False(t, isValidEmail("user@domain.c"))
}

func TestEmailChecks(t *testing.T) {
	app := fiber.New()
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Post("/register", Register(), ok)
	app.Post("/login", Login(), ok)

	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{"register", "/register", `{"name":"Ada","email":"ada@uni.edu","password":"password123","role":"Student"}`, http.StatusOK},
		{"register bad email", "/register", `{"name":"Ada","email":"ada","password":"password123","role":"Student"}`, http.StatusUnprocessableEntity},
		{"register admin", "/register", `{"name":"Ada","email":"ada@uni.edu","password":"password123","role":"Admin"}`, http.StatusUnprocessableEntity},
		{"login", "/login", `{"email":"ada@uni.edu","password":"password123"}`, http.StatusOK},
		{"login bad email", "/login", `{"email":"ada@uni","password":"password123"}`, http.StatusUnprocessableEntity},
		{"login short password", "/login", `{"email":"ada@uni.edu","password":"short"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tc.want, resp.StatusCode, string(body))
		})
	}
}
