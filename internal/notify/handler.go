package notify

import (
	"canteen-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type NotificationResponse struct {
	ID        uint   `json:"id"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// GET /api/notifications?limit=10
func ListHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		feed, err := svc.List(c.UserContext(), userID, c.QueryInt("limit", DefaultLimit))
		if err != nil {
			return err
		}

		items := make([]NotificationResponse, 0, len(feed.Notifications))
		for _, n := range feed.Notifications {
			items = append(items, NotificationResponse{
				ID:        n.ID,
				Message:   n.Message,
				IsRead:    n.IsRead,
				CreatedAt: n.CreatedAt.Format("15:04 02.01"),
			})
		}
		return c.JSON(fiber.Map{
			"count":         feed.Unread,
			"notifications": items,
		})
	}
}

// POST /api/notifications/read
func MarkReadHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		n, err := svc.MarkAllRead(c.UserContext(), userID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "marked": n})
	}
}
