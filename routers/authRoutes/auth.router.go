package authRoutes

import (
	authControllers "campuslink/controllers/auth"
	"campuslink/middleware"
	authValidators "campuslink/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", authValidators.Register(), authControllers.Register)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Post("/logout", append(middleware.Protected, authControllers.Logout)...)
}
