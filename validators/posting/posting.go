package postingValidator

import (
	"campuslink/middleware"
	"campuslink/models"
	"campuslink/services"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// ListVisible validator middleware for the student search filters
func ListVisible() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Type         string `query:"type"`
			Tag          string `query:"tag"`
			Search       string `query:"q"`
			DeadlineFrom string `query:"deadline_from"`
			DeadlineTo   string `query:"deadline_to"`
			Organization uint   `query:"organization"`
		})
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)
		filter := services.PostingFilter{
			Type:           strings.ToLower(strings.TrimSpace(reqData.Type)),
			Tag:            strings.TrimSpace(reqData.Tag),
			Search:         strings.TrimSpace(reqData.Search),
			OrganizationID: reqData.Organization,
		}
		if filter.Type != "" && !slices.Contains(models.OpportunityTypes, filter.Type) {
			errors["type"] = "Unknown opportunity type!"
		}
		if reqData.DeadlineFrom != "" {
			if d, err := time.ParseInLocation(dateLayout, reqData.DeadlineFrom, time.UTC); err != nil {
				errors["deadline_from"] = "Date must be in YYYY-MM-DD format!"
			} else {
				filter.DeadlineFrom = &d
			}
		}
		if reqData.DeadlineTo != "" {
			if d, err := time.ParseInLocation(dateLayout, reqData.DeadlineTo, time.UTC); err != nil {
				errors["deadline_to"] = "Date must be in YYYY-MM-DD format!"
			} else {
				filter.DeadlineTo = &d
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedFilter", filter)
		return c.Next()
	}
}
