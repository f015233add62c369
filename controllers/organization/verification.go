package organizationController

import (
	"campuslink/middleware"
	"campuslink/services"
	"campuslink/utils"

	"github.com/gofiber/fiber/v2"
)

func SubmitVerification(c *fiber.Ctx) error {
	email, _ := c.Locals("validatedEmail").(string)

	document, done, err := utils.FormUpload(c, "document")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to read uploaded file!", nil)
	}
	defer done()

	profile, err := services.Default.Verification.Submit(c.UserContext(), middleware.CurrentActor(c), services.SubmitVerificationInput{
		InstitutionalEmail: email,
		Document:           document,
	})
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification submitted successfully. An admin will review it shortly.", fiber.Map{
		"verification_status": profile.VerificationStatus,
		"submitted_at":        profile.VerificationSubmittedAt,
	})
}

func VerificationStatus(c *fiber.Ctx) error {
	status, err := services.Default.Verification.Status(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification status fetched successfully.", status)
}
