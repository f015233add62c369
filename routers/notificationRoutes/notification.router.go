package notificationRoutes

import (
	notificationController "campuslink/controllers/notification"
	"campuslink/middleware"
	"campuslink/validators"
	notificationValidator "campuslink/validators/notification"

	"github.com/gofiber/fiber/v2"
)

func SetupNotificationRoutes(app *fiber.App) {
	notificationGroup := app.Group("/notifications", middleware.Protected...)

	notificationGroup.Get("/", notificationValidator.List(), notificationController.List)
	notificationGroup.Get("/unread-count", notificationController.UnreadCount)
	notificationGroup.Patch("/read-all", notificationController.MarkAllRead)
	notificationGroup.Patch("/:id", validators.ID(), notificationValidator.Mutate(), notificationController.Mutate)
}
