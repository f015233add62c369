package adminController

import (
	"campuslink/middleware"
	"campuslink/services"
	adminValidator "campuslink/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func PendingVerifications(c *fiber.Ctx) error {
	page, _ := c.Locals("validatedPage").(services.Page)

	items, total, err := services.Default.Verification.ListPending(c.UserContext(), middleware.AdminCapability(c), page)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	_, limit := page.Bounds()
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending verifications fetched successfully.", fiber.Map{
		"verifications": items,
		"pagination": fiber.Map{
			"total": total,
			"page":  max(page.Page, 1),
			"limit": limit,
		},
	})
}

func ReviewVerification(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)
	review, ok := c.Locals("validatedReview").(adminValidator.ReviewRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	profile, err := services.Default.Verification.Review(c.UserContext(), middleware.AdminCapability(c), id, review.Decision, review.Reason)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification "+decided(review.Decision)+".", fiber.Map{
		"profile_id":          profile.ID,
		"verification_status": profile.VerificationStatus,
		"verification_reason": profile.VerificationReason,
	})
}

func PendingPostings(c *fiber.Ctx) error {
	page, _ := c.Locals("validatedPage").(services.Page)

	postings, total, err := services.Default.Postings.ListPending(c.UserContext(), middleware.AdminCapability(c), page)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	_, limit := page.Bounds()
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending opportunities fetched successfully.", fiber.Map{
		"postings": postings,
		"pagination": fiber.Map{
			"total": total,
			"page":  max(page.Page, 1),
			"limit": limit,
		},
	})
}

func ReviewPosting(c *fiber.Ctx) error {
	id, _ := c.Locals("id").(uint)
	review, ok := c.Locals("validatedReview").(adminValidator.ReviewRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	posting, err := services.Default.Postings.Review(c.UserContext(), middleware.AdminCapability(c), id, review.Decision, review.Reason)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Opportunity "+decided(review.Decision)+".", posting)
}

func Stats(c *fiber.Ctx) error {
	stats, err := services.Default.Admin.Stats(c.UserContext(), middleware.AdminCapability(c))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully.", stats)
}

func decided(d services.Decision) string {
	if d == services.DecisionApprove {
		return "approved"
	}
	return "rejected"
}
