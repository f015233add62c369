package adminValidator

import (
	"campuslink/middleware"
	"campuslink/services"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type ReviewRequest struct {
	Decision services.Decision
	Reason   string
}

// Review validator middleware for verification and posting decisions
func Review() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Action string `json:"action"`
			Reason string `json:"reason"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		decision, err := services.ParseDecision(reqData.Action)
		if err != nil {
			errors["action"] = "Action must be approve or reject!"
		}
		if decision == services.DecisionReject && strings.TrimSpace(reqData.Reason) == "" {
			errors["reason"] = "Reason is required when rejecting!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReview", ReviewRequest{Decision: decision, Reason: reqData.Reason})
		return c.Next()
	}
}
