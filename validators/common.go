package validators

import (
	"campuslink/middleware"
	"campuslink/services"

	"github.com/gofiber/fiber/v2"
)

// ID validates the :id route parameter and stores it as "id".
func ID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"id": "Invalid id!"})
		}
		c.Locals("id", uint(id))
		return c.Next()
	}
}

// Pagination validates page and limit query parameters.
func Pagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.Page)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)
		if reqData.Page < 0 {
			errors["page"] = "Page must be a positive number!"
		}
		if reqData.Limit < 0 || reqData.Limit > 100 {
			errors["limit"] = "Limit must be between 1 and 100!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPage", *reqData)
		return c.Next()
	}
}
