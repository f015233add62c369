package userController

import (
	"campuslink/middleware"
	"campuslink/services"
	"campuslink/utils"

	"github.com/gofiber/fiber/v2"
)

func GetProfile(c *fiber.Ctx) error {
	view, err := services.Default.Profiles.Get(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", view)
}

func UpdateProfile(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedProfile").(*services.ProfileUpdate)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	view, err := services.Default.Profiles.Update(c.UserContext(), middleware.CurrentActor(c), *reqData)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully.", view)
}

func UploadLogo(c *fiber.Ctx) error {
	upload, done, err := utils.FormUpload(c, "logo")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to read uploaded file!", nil)
	}
	defer done()

	view, err := services.Default.Profiles.UpdateLogo(c.UserContext(), middleware.CurrentActor(c), upload)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logo updated successfully.", view)
}

func OrganizationProfile(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)
	view, err := services.Default.Profiles.Organization(c.UserContext(), id)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Organization fetched successfully.", view)
}
