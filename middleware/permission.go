package middleware

import (
	"campuslink/models"
	"campuslink/services"

	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that only lets the given role through.
// It must run after SessionMiddleware.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := CurrentActor(c)
		if !actor.Authenticated() {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}
		if actor.Role != role {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}
		return c.Next()
	}
}

// RequireAdmin performs the admin check once and stores the resulting capability.
func RequireAdmin(c *fiber.Ctx) error {
	admin, err := CurrentActor(c).Admin()
	if err != nil {
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
	c.Locals("admin", admin)
	return c.Next()
}

// AdminCapability returns the capability stored by RequireAdmin.
func AdminCapability(c *fiber.Ctx) services.AdminCapability {
	admin, _ := c.Locals("admin").(services.AdminCapability)
	return admin
}
