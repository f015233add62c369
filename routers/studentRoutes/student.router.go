package studentRoutes

import (
	"campuslink/config"
	studentController "campuslink/controllers/student"
	"campuslink/middleware"
	"campuslink/models"
	"campuslink/validators"
	studentValidator "campuslink/validators/student"

	"github.com/gofiber/fiber/v2"
)

// SetupStudentRoutes registers the student area. limiter may be nil.
func SetupStudentRoutes(app *fiber.App, limiter *middleware.RedisLimiter) {
	handlers := append(middleware.Protected, middleware.RequireRole(models.RoleStudent))
	studentGroup := app.Group("/student", handlers...)

	applyLimit := middleware.PerUserRateLimiter("apply", limiter, config.AppConfig.ApplyRateLimit, config.AppConfig.ApplyRateLimitWindow)

	studentGroup.Post("/postings/:id/apply", applyLimit, validators.ID(), studentValidator.Apply(), studentController.Apply)
	studentGroup.Get("/applications", studentController.MyApplications)
	studentGroup.Patch("/applications/:id/withdraw", validators.ID(), studentController.Withdraw)

	// Readable by the applicant, the owning organization and admins
	app.Get("/applications/:id", append(middleware.Protected, validators.ID(), studentController.ApplicationDetail)...)
}
