package supply

import (
	"canteen-backend/internal/auth"
	"canteen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type CreateRequestBody struct {
	ProductName string                `json:"product_name"`
	Quantity    int                   `json:"quantity"`
	Priority    models.SupplyPriority `json:"priority"`
	TotalCost   float64               `json:"total_cost"`
}

// POST /api/cook/supply-requests
func CreateRequestHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequestBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		req, err := svc.CreateRequest(auth.Context(c), RequestInput{
			ProductName: body.ProductName,
			Quantity:    body.Quantity,
			Priority:    body.Priority,
			TotalCost:   body.TotalCost,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	}
}

// POST /api/cook/supply-requests/auto
func AutoRequestHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqs, err := svc.AutoGenerateLowStock(auth.Context(c))
		if err != nil {
			return err
		}
		log.Info().Int("count", len(reqs)).Msg("automatic supply requests generated")
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"created":  len(reqs),
			"requests": reqs,
		})
	}
}

// GET /api/cook/supply-requests, GET /api/admin/supply-requests?status=Pending
func ListRequestsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := models.SupplyStatus(c.Query("status"))
		switch status {
		case "", models.SupplyPending, models.SupplyApproved, models.SupplyRejected:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "status must be Pending, Approved or Rejected")
		}

		reqs, err := svc.List(c.UserContext(), status)
		if err != nil {
			return err
		}
		return c.JSON(reqs)
	}
}

// POST /api/admin/supply-requests/:id/approve, POST /api/admin/supply-requests/:id/reject
func DecideHandler(svc *Service, decision Decision) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid id")
		}

		req, err := svc.Decide(auth.Context(c), uint(id), decision)
		if err != nil {
			return err
		}

		log.Info().Uint("request_id", req.ID).Str("status", string(req.Status)).Msg("supply request decided")
		return c.JSON(req)
	}
}
