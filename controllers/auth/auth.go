package authController

import (
	"campuslink/middleware"
	"campuslink/services"
	"log"

	"github.com/gofiber/fiber/v2"
)

func Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*services.RegisterInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := services.Default.Profiles.Register(c.UserContext(), *reqData)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", user)
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(services.LoginInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	reqData.IPAddress = c.IP()
	reqData.Device = c.Get("User-Agent")

	result, err := services.Default.Profiles.Login(c.UserContext(), reqData)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	token, err := middleware.GenerateJWT(result.User.ID, result.User.Profile.Role, result.Session.TokenID)
	if err != nil {
		log.Printf("[AUTH] failed to sign token for user %d: %v", result.User.ID, err)
		if endErr := services.Default.Sessions.End(c.UserContext(), result.Session.TokenID); endErr != nil {
			log.Printf("[AUTH] failed to end unsigned session: %v", endErr)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"token": token,
		"user":  result.User,
	})
}

func Logout(c *fiber.Ctx) error {
	tokenID, _ := c.Locals("tokenId").(string)
	if err := services.Default.Sessions.End(c.UserContext(), tokenID); err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully.", nil)
}
