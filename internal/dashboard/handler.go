package dashboard

import (
	"canteen-backend/internal/auth"
	"canteen-backend/internal/models"
	"canteen-backend/internal/review"

	"github.com/gofiber/fiber/v2"
)

// GET /api/dashboard?sort=newest
// The view depends on the caller's role.
func Handler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		ctx := c.UserContext()
		switch role := auth.Role(c); role {
		case models.RoleStudent:
			view, err := svc.Student(ctx, userID)
			if err != nil {
				return err
			}
			return c.JSON(fiber.Map{"role": role, "dashboard": view})
		case models.RoleCook:
			view, err := svc.Cook(ctx)
			if err != nil {
				return err
			}
			return c.JSON(fiber.Map{"role": role, "dashboard": view})
		case models.RoleAdmin:
			view, err := svc.Admin(ctx, review.Sort(c.Query("sort", string(review.SortNewest))))
			if err != nil {
				return err
			}
			return c.JSON(fiber.Map{"role": role, "dashboard": view})
		default:
			return fiber.NewError(fiber.StatusForbidden, "unknown role")
		}
	}
}
