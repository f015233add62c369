package organizationRoutes

import (
	organizationController "campuslink/controllers/organization"
	"campuslink/middleware"
	"campuslink/models"
	"campuslink/validators"
	organizationValidator "campuslink/validators/organization"

	"github.com/gofiber/fiber/v2"
)

func SetupOrganizationRoutes(app *fiber.App) {
	handlers := append(middleware.Protected, middleware.RequireRole(models.RoleOrganization))
	orgGroup := app.Group("/organization", handlers...)

	// Verification
	orgGroup.Post("/verification", organizationValidator.SubmitVerification(), organizationController.SubmitVerification)
	orgGroup.Get("/verification", organizationController.VerificationStatus)

	// Postings
	orgGroup.Post("/postings", organizationValidator.Posting(), organizationController.CreatePosting)
	orgGroup.Get("/postings", organizationController.MyPostings)
	orgGroup.Put("/postings/:id", validators.ID(), organizationValidator.Posting(), organizationController.UpdatePosting)
	orgGroup.Patch("/postings/:id/status", validators.ID(), organizationValidator.PostingStatus(), organizationController.SetPostingStatus)
	orgGroup.Delete("/postings/:id", validators.ID(), organizationController.DeletePosting)

	// Applications
	orgGroup.Get("/applications", organizationController.PostingApplications)
	orgGroup.Get("/postings/:id/applications", validators.ID(), organizationController.PostingApplications)
	orgGroup.Patch("/applications/:id/status", validators.ID(), organizationValidator.ApplicationStatus(), organizationController.UpdateApplicationStatus)
}
