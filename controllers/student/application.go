package studentController

import (
	"campuslink/middleware"
	"campuslink/services"
	"campuslink/utils"

	"github.com/gofiber/fiber/v2"
)

func Apply(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)
	note, _ := c.Locals("validatedNote").(string)

	resume, done, err := utils.FormUpload(c, "resume")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to read uploaded file!", nil)
	}
	defer done()

	application, err := services.Default.Applications.Apply(c.UserContext(), middleware.CurrentActor(c), id, resume, note)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Application submitted successfully.", application)
}

// CanApply works for anonymous callers too, so the board can render the apply button.
func CanApply(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)

	eligibility, err := services.Default.Applications.CanApply(c.UserContext(), middleware.CurrentActor(c), id)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, eligibility.Message, eligibility)
}

func MyApplications(c *fiber.Ctx) error {
	applications, err := services.Default.Applications.ListMine(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Applications fetched successfully.", applications)
}

func Withdraw(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)

	application, err := services.Default.Applications.Withdraw(c.UserContext(), middleware.CurrentActor(c), id)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Application withdrawn.", application)
}

// ApplicationDetail is shared by the student, the owning organization and admins.
func ApplicationDetail(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)

	detail, err := services.Default.Applications.Detail(c.UserContext(), middleware.CurrentActor(c), id)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Application fetched successfully.", detail)
}
