package organizationValidator

import (
	"campuslink/middleware"
	"campuslink/models"
	"campuslink/services"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SubmitVerification validator middleware. The document itself is checked by the service.
func SubmitVerification() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := strings.TrimSpace(c.FormValue("institutional_email"))

		errors := make(map[string]string)
		if email == "" {
			errors["institutional_email"] = "Institutional email is required!"
		}
		if _, err := c.FormFile("document"); err != nil {
			errors["document"] = "Verification document is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedEmail", email)
		return c.Next()
	}
}

// Posting validator middleware for create and edit
func Posting() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.PostingInput)
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

		c.Locals("validatedPosting", reqData)
		return c.Next()
	}
}

// PostingStatus validator middleware
func PostingStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Status string `json:"status"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if !strings.EqualFold(reqData.Status, models.PostingActive) && !strings.EqualFold(reqData.Status, models.PostingClosed) {
			return middleware.ValidationErrorResponse(c, map[string]string{"status": "Status must be Active or Closed!"})
		}

		c.Locals("validatedStatus", reqData.Status)
		return c.Next()
	}
}

// ApplicationStatus validator middleware. Allowed moves are decided by the service.
func ApplicationStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Status string `json:"status"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.Status) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"status": "Status is required!"})
		}

		c.Locals("validatedStatus", reqData.Status)
		return c.Next()
	}
}
