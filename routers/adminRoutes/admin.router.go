package adminRoutes

import (
	adminController "campuslink/controllers/admin"
	"campuslink/middleware"
	"campuslink/validators"
	adminValidator "campuslink/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	handlers := append(middleware.Protected, middleware.RequireAdmin)
	adminGroup := app.Group("/admin", handlers...)

	adminGroup.Get("/verifications", validators.Pagination(), adminController.PendingVerifications)
	adminGroup.Patch("/verifications/:id", validators.ID(), adminValidator.Review(), adminController.ReviewVerification)
	adminGroup.Get("/postings", validators.Pagination(), adminController.PendingPostings)
	adminGroup.Patch("/postings/:id", validators.ID(), adminValidator.Review(), adminController.ReviewPosting)
	adminGroup.Get("/stats", adminController.Stats)
}
