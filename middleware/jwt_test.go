package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campuslink/config"
	"campuslink/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwtApp() *fiber.App {
	app := fiber.New()
	app.Get("/", JWTMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userId":  c.Locals("userId"),
			"role":    c.Locals("role"),
			"tokenId": c.Locals("tokenId"),
		})
	})
	return app
}

func authorized(t *testing.T, app *fiber.App, header string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestJWTMiddleware(t *testing.T) {
	config.AppConfig = &config.Config{JWTKey: "test-secret"}
	app := jwtApp()

	token, err := GenerateJWT(7, models.RoleStudent, "session-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, authorized(t, app, "Bearer "+token))

	assert.Equal(t, http.StatusUnauthorized, authorized(t, app, ""))
	assert.Equal(t, http.StatusUnauthorized, authorized(t, app, token), "missing Bearer prefix")
	assert.Equal(t, http.StatusUnauthorized, authorized(t, app, "Bearer "+token+"x"))

	config.AppConfig.JWTKey = "rotated"
	assert.Equal(t, http.StatusUnauthorized, authorized(t, app, "Bearer "+token), "signed with another key")
}

func TestJWTMiddlewareRequiresSessionClaim(t *testing.T) {
	config.AppConfig = &config.Config{JWTKey: "test-secret"}
	app := jwtApp()

	claims := jwt.MapClaims{
		"userId": 7,
		"role":   "Student",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, authorized(t, app, "Bearer "+token))

	claims["jti"] = "session-1"
	claims["role"] = "Janitor"
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, authorized(t, app, "Bearer "+token))
}
