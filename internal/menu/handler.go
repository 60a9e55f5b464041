package menu

import (
	"time"

	"canteen-backend/internal/auth"
	"canteen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateDishRequest struct {
	Name      string          `json:"name"`
	Price     float64         `json:"price"`
	Category  models.Category `json:"category"`
	Quantity  int             `json:"quantity"`
	Date      string          `json:"date"` // "2026-03-10", optional
	Allergens string          `json:"allergens"`
}

type UpdateStockRequest struct {
	Quantity *int `json:"quantity"`
}

type ItemResponse struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Price     float64         `json:"price"`
	Category  models.Category `json:"category"`
	Quantity  int             `json:"quantity"`
	Date      string          `json:"date"`
	Allergens string          `json:"allergens"`
	IsActive  bool            `json:"is_active"`
}

func NewItemResponse(m *models.MenuItem) ItemResponse {
	return ItemResponse{
		ID:        m.ID,
		Name:      m.Name,
		Price:     m.Price,
		Category:  m.Category,
		Quantity:  m.Quantity,
		Date:      m.Date.Format("2006-01-02"),
		Allergens: m.Allergens,
		IsActive:  m.IsActive,
	}
}

func NewItemResponses(items []models.MenuItem) []ItemResponse {
	res := make([]ItemResponse, 0, len(items))
	for i := range items {
		res = append(res, NewItemResponse(&items[i]))
	}
	return res
}

// GET /api/menu
func ListMenuHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListMenu(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(NewItemResponses(items))
	}
}

// GET /api/cook/warehouse
func ListWarehouseHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListWarehouse(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(NewItemResponses(items))
	}
}

// POST /api/cook/dishes
func CreateDishHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateDishRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		in := DishInput{
			Name:      body.Name,
			Price:     body.Price,
			Category:  body.Category,
			Quantity:  body.Quantity,
			Allergens: body.Allergens,
		}
		if body.Date != "" {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
			}
			in.Date = d
		}

		item, merged, err := svc.CreateDish(auth.Context(c), in)
		if err != nil {
			return err
		}

		status := fiber.StatusCreated
		if merged {
			status = fiber.StatusOK
		}
		return c.Status(status).JSON(fiber.Map{
			"merged": merged,
			"item":   NewItemResponse(item),
		})
	}
}

// POST /api/cook/dishes/:id/publish
func PublishDishHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid id")
		}

		item, err := svc.PublishDish(auth.Context(c), uint(id))
		if err != nil {
			return err
		}
		return c.JSON(NewItemResponse(item))
	}
}

// PUT /api/cook/items/:id/stock
func UpdateStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid id")
		}

		var body UpdateStockRequest
		if err := c.BodyParser(&body); err != nil || body.Quantity == nil {
			return fiber.NewError(fiber.StatusBadRequest, "quantity is required")
		}

		item, err := svc.UpdateStock(auth.Context(c), uint(id), *body.Quantity)
		if err != nil {
			return err
		}
		return c.JSON(NewItemResponse(item))
	}
}
