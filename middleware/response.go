package middleware

import (
	"campuslink/services"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

var kindStatus = map[services.Kind]int{
	services.KindValidation:          fiber.StatusUnprocessableEntity,
	services.KindUnauthenticated:     fiber.StatusUnauthorized,
	services.KindAccessDenied:        fiber.StatusForbidden,
	services.KindNotFound:            fiber.StatusNotFound,
	services.KindNotFoundOrProcessed: fiber.StatusConflict,
	services.KindDuplicate:           fiber.StatusConflict,
	services.KindInvalidState:        fiber.StatusConflict,
	services.KindNotVerified:         fiber.StatusForbidden,
	services.KindPostingClosed:       fiber.StatusGone,
}

// ServiceErrorResponse writes a service failure with the status matching its kind.
// Unclassified errors are logged and reported as 500.
func ServiceErrorResponse(c *fiber.Ctx, err error) error {
	kind := services.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		log.Printf("[HTTP] %s %s failed: %v", c.Method(), c.Path(), err)
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong, please try again later!", nil)
	}
	if kind == services.KindValidation {
		var e *services.Error
		if errors.As(err, &e) && len(e.Fields) > 0 {
			return JsonResponse(c, status, false, e.Message, e.Fields)
		}
	}
	return JsonResponse(c, status, false, err.Error(), nil)
}
