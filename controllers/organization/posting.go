package organizationController

import (
	"campuslink/middleware"
	"campuslink/services"

	"github.com/gofiber/fiber/v2"
)

func CreatePosting(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPosting").(*services.PostingInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	posting, err := services.Default.Postings.Create(c.UserContext(), middleware.CurrentActor(c), *reqData)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Opportunity submitted for review.", posting)
}

func UpdatePosting(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)
	reqData, ok := c.Locals("validatedPosting").(*services.PostingInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	posting, err := services.Default.Postings.Update(c.UserContext(), middleware.CurrentActor(c), id, *reqData)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Opportunity updated successfully.", posting)
}

func SetPostingStatus(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)
	status, _ := c.Locals("validatedStatus").(string)

	posting, err := services.Default.Postings.SetStatus(c.UserContext(), middleware.CurrentActor(c), id, status)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Opportunity status updated successfully.", posting)
}

func DeletePosting(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)
	if err := services.Default.Postings.Delete(c.UserContext(), middleware.CurrentActor(c), id); err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Opportunity deleted successfully.", nil)
}

func MyPostings(c *fiber.Ctx) error {
	postings, err := services.Default.Postings.ListMine(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Opportunities fetched successfully.", postings)
}
