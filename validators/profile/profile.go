package profileValidator

import (
	"campuslink/middleware"
	"campuslink/services"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfile validator middleware. Role specific rules are applied by the service.
func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.ProfileUpdate)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors, err := services.FieldErrors(reqData)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProfile", reqData)
		return c.Next()
	}
}

// Logo validator middleware
func Logo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := c.FormFile("logo"); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"logo": "Logo file is required!"})
		}
		return c.Next()
	}
}
