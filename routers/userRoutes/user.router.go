package userProfileRoutes

import (
	userProfileController "campuslink/controllers/userControllers"
	"campuslink/middleware"
	"campuslink/validators"
	profileValidator "campuslink/validators/profile"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.Protected...)

	userGroup.Get("/profile", userProfileController.GetProfile)
	userGroup.Put("/profile", profileValidator.UpdateProfile(), userProfileController.UpdateProfile)
	userGroup.Post("/profile/logo", profileValidator.Logo(), userProfileController.UploadLogo)

	// Public organization pages
	app.Get("/profiles/organization/:id", validators.ID(), userProfileController.OrganizationProfile)
}
