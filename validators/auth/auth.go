package authValidator

import (
	"campuslink/middleware"
	"campuslink/models"
	"campuslink/services"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Helper to validate email format
func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Register validator middleware
func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.RegisterInput)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors, err := services.FieldErrors(reqData)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors == nil {
			errors = make(map[string]string)
		}

		if _, seen := errors["email"]; !seen && !isValidEmail(strings.TrimSpace(reqData.Email)) {
			errors["email"] = "Invalid email!"
		}
		if role, err := models.ParseRole(reqData.Role); err != nil || role == models.RoleAdmin {
			errors["role"] = "Role must be Student or Organization!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to parse request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.Email == "" || !isValidEmail(strings.TrimSpace(reqData.Email)) {
			errors["email"] = "Invalid email!"
		}
		if len(strings.TrimSpace(reqData.Password)) < 8 {
			errors["password"] = "Password must be at least 8 characters long!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", services.LoginInput{
			Email:    reqData.Email,
			Password: reqData.Password,
		})
		return c.Next()
	}
}
