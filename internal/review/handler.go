package review

import (
	"canteen-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// POST /api/items/:id/reviews
func CreateHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		itemID, err := c.ParamsInt("id")
		if err != nil || itemID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid id")
		}

		var body CreateReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		rev, err := svc.Create(c.UserContext(), userID, uint(itemID), body.Rating, body.Comment)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(rev)
	}
}

// GET /api/admin/reviews?sort=newest|oldest|rating_high|rating_low
func ListHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := svc.List(c.UserContext(), Sort(c.Query("sort", string(SortNewest))))
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}
