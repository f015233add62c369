package postingRoutes

import (
	postingController "campuslink/controllers/posting"
	studentController "campuslink/controllers/student"
	"campuslink/middleware"
	"campuslink/validators"
	postingValidator "campuslink/validators/posting"

	"github.com/gofiber/fiber/v2"
)

// SetupPostingRoutes registers the public board. A token is optional on every route.
func SetupPostingRoutes(app *fiber.App) {
	postingGroup := app.Group("/postings", middleware.OptionalAuth...)

	postingGroup.Get("/", validators.Pagination(), postingValidator.ListVisible(), postingController.ListPostings)
	postingGroup.Get("/:id", validators.ID(), postingController.ViewPosting)
	postingGroup.Get("/:id/can-apply", validators.ID(), studentController.CanApply)
}
