package notificationController

import (
	"campuslink/middleware"
	"campuslink/services"

	"github.com/gofiber/fiber/v2"
)

// List returns a tab of the inbox. Listed items are marked read afterwards.
func List(c *fiber.Ctx) error {
	tab, _ := c.Locals("validatedTab").(string)

	list, err := services.Default.Notifications.List(c.UserContext(), middleware.CurrentActor(c).UserID, tab)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications fetched successfully.", list)
}

func Mutate(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)
	action, _ := c.Locals("validatedAction").(string)

	if err := services.Default.Notifications.Mutate(c.UserContext(), middleware.CurrentActor(c).UserID, id, action); err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification updated.", nil)
}

func MarkAllRead(c *fiber.Ctx) error {
	updated, err := services.Default.Notifications.MarkAllRead(c.UserContext(), middleware.CurrentActor(c).UserID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "All notifications marked as read.", fiber.Map{"updated": updated})
}

func UnreadCount(c *fiber.Ctx) error {
	count, err := services.Default.Notifications.UnreadCount(c.UserContext(), middleware.CurrentActor(c).UserID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Unread count fetched successfully.", fiber.Map{"unread_count": count})
}
