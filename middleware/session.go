package middleware

import (
	"campuslink/config"
	"campuslink/models"
	"campuslink/services"
	"log"

	"github.com/gofiber/fiber/v2"
)

// SessionMiddleware enforces the idle logout and builds the request's Actor.
// It must run after JWTMiddleware.
func SessionMiddleware(c *fiber.Ctx) error {
	tokenID, _ := c.Locals("tokenId").(string)
	userID, _ := c.Locals("userId").(uint)
	role, _ := c.Locals("role").(models.Role)

	sessions := services.Default.Sessions
	session, err := sessions.Find(c.UserContext(), tokenID)
	if err != nil {
		return ServiceErrorResponse(c, err)
	}
	if session.UserID != userID {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid session", nil)
	}

	state := services.SessionContext{LastActivity: session.LastActivity}
	if state.Expired(sessions.Now(), config.AppConfig.AutoLogout) {
		if err := sessions.End(c.UserContext(), tokenID); err != nil {
			log.Printf("[SESSION] failed to end idle session %d: %v", session.ID, err)
		}
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Session expired due to inactivity. Please log in again.", nil)
	}
	if err := sessions.Touch(c.UserContext(), session.ID); err != nil {
		log.Printf("[SESSION] failed to record activity for session %d: %v", session.ID, err)
	}

	c.Locals("actor", services.Actor{UserID: userID, Role: role})
	return c.Next()
}

// Protected chains token and session checks for authenticated routes.
var Protected = []fiber.Handler{JWTMiddleware, SessionMiddleware}

// OptionalAuth authenticates the caller when a token is present and lets
// anonymous requests through with an empty Actor.
var OptionalAuth = []fiber.Handler{optionalJWT, optionalSession}

func optionalJWT(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Next()
	}
	return JWTMiddleware(c)
}

func optionalSession(c *fiber.Ctx) error {
	if _, ok := c.Locals("tokenId").(string); !ok {
		c.Locals("actor", services.Actor{})
		return c.Next()
	}
	return SessionMiddleware(c)
}

// CurrentActor returns the Actor stored by SessionMiddleware.
func CurrentActor(c *fiber.Ctx) services.Actor {
	actor, _ := c.Locals("actor").(services.Actor)
	return actor
}
