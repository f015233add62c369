package postingController

import (
	"campuslink/middleware"
	"campuslink/models"
	"campuslink/services"

	"github.com/gofiber/fiber/v2"
)

// ListPostings pages through the visible postings matching the filter.
func ListPostings(c *fiber.Ctx) error {
	filter, _ := c.Locals("validatedFilter").(services.PostingFilter)
	page, _ := c.Locals("validatedPage").(services.Page)
	offset, limit := page.Bounds()

	postings := make([]models.Posting, 0, limit)
	hasMore := false
	skipped := 0
	for posting, err := range services.Default.Postings.ListVisible(c.UserContext(), filter) {
		if err != nil {
			return middleware.ServiceErrorResponse(c, err)
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(postings) == limit {
			hasMore = true
			break
		}
		postings = append(postings, posting)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Opportunities fetched successfully.", fiber.Map{
		"postings": postings,
		"pagination": fiber.Map{
			"page":     offset/limit + 1,
			"limit":    limit,
			"has_more": hasMore,
		},
	})
}

func ViewPosting(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)

	posting, err := services.Default.Postings.View(c.UserContext(), middleware.CurrentActor(c), id)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Opportunity fetched successfully.", posting)
}
