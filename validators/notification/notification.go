package notificationValidator

import (
	"campuslink/middleware"
	"campuslink/services"

	"github.com/gofiber/fiber/v2"
)

// List validator middleware
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tab := c.Query("tab", services.TabAll)
		switch tab {
		case services.TabAll, services.TabFavorite, services.TabArchive:
		default:
			return middleware.ValidationErrorResponse(c, map[string]string{"tab": "Tab must be all, favorite or archive!"})
		}

		c.Locals("validatedTab", tab)
		return c.Next()
	}
}

// Mutate validator middleware
func Mutate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Action string `json:"action"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		switch reqData.Action {
		case services.ActionFavorite, services.ActionRead, services.ActionArchive, services.ActionDelete:
		default:
			return middleware.ValidationErrorResponse(c, map[string]string{"action": "Action must be favorite, read, archive or delete!"})
		}

		c.Locals("validatedAction", reqData.Action)
		return c.Next()
	}
}
