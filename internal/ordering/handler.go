package ordering

import (
	"canteen-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type PlaceOrderRequest struct {
	ItemID   uint `json:"item_id"`
	Quantity int  `json:"quantity"`
}

// POST /api/orders
func PlaceOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		var body PlaceOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.Quantity == 0 {
			body.Quantity = 1
		}

		conf, err := svc.PlaceOrder(auth.Context(c), userID, body.ItemID, body.Quantity)
		if err != nil {
			return err
		}

		log.Info().
			Uint("user_id", userID).
			Uint("item_id", conf.ItemID).
			Int("quantity", conf.Quantity).
			Str("status", string(conf.Status)).
			Msg("order placed")
		return c.Status(fiber.StatusCreated).JSON(conf)
	}
}

// POST /api/subscription
func PurchaseSubscriptionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		conf, err := svc.PurchaseSubscription(auth.Context(c), userID)
		if err != nil {
			return err
		}

		log.Info().Uint("user_id", userID).Time("until", conf.SubscriptionEnd).Msg("subscription purchased")
		return c.Status(fiber.StatusCreated).JSON(conf)
	}
}

// GET /api/cook/orders
func ListPendingHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orders, err := svc.ListPending(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(orders)
	}
}

// POST /api/cook/orders/:id/complete
func CompleteOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid id")
		}

		if _, err := svc.CompleteOrder(auth.Context(c), uint(id)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// POST /api/cook/orders/complete-all
func CompleteAllHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.CompleteAllPending(auth.Context(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "completed": n})
	}
}
