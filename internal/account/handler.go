package account

import (
	"canteen-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type TopUpRequest struct {
	Amount float64 `json:"amount"`
}

type AllergiesRequest struct {
	Allergies string `json:"allergies"`
}

// POST /api/account/top-up
func TopUpHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		var body TopUpRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid amount")
		}

		balance, err := svc.TopUp(c.UserContext(), userID, body.Amount)
		if err != nil {
			return err
		}

		log.Info().Uint("user_id", userID).Float64("amount", body.Amount).Msg("balance topped up")
		return c.JSON(fiber.Map{"balance": balance})
	}
}

// PUT /api/account/allergies
func UpdateAllergiesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		var body AllergiesRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		user, err := svc.UpdateAllergies(c.UserContext(), userID, body.Allergies)
		if err != nil {
			return err
		}
		return c.JSON(auth.NewUserResponse(user))
	}
}
