package studentValidator

import (
	"campuslink/middleware"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
)

const maxNoteLength = 2000

// Apply validator middleware. Accepts multipart (with an optional resume) or JSON.
func Apply() fiber.Handler {
	return func(c *fiber.Ctx) error {
		note := c.FormValue("note")
		if note == "" && strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON) {
			reqData := new(struct {
				Note string `json:"note"`
			})
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
			note = reqData.Note
		}

		if utf8.RuneCountInString(strings.TrimSpace(note)) > maxNoteLength {
			return middleware.ValidationErrorResponse(c, map[string]string{"note": "Note must be at most 2000 characters!"})
		}

		c.Locals("validatedNote", note)
		return c.Next()
	}
}
