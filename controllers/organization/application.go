package organizationController

import (
	"campuslink/middleware"
	"campuslink/services"

	"github.com/gofiber/fiber/v2"
)

// PostingApplications lists the applications received for one of the caller's
// postings, or for all of them when the route has no posting id.
func PostingApplications(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)

	applications, err := services.Default.Applications.ListForOrganization(c.UserContext(), middleware.CurrentActor(c), id)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Applications fetched successfully.", applications)
}

func UpdateApplicationStatus(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)
	status, _ := c.Locals("validatedStatus").(string)

	application, err := services.Default.Applications.UpdateStatus(c.UserContext(), middleware.CurrentActor(c), id, status)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Application status updated successfully.", application)
}
