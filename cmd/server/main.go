package main

import (
	"strings"
	"time"

	"canteen-backend/internal/account"
	"canteen-backend/internal/apperr"
	"canteen-backend/internal/audit"
	"canteen-backend/internal/auth"
	"canteen-backend/internal/config"
	"canteen-backend/internal/dashboard"
	"canteen-backend/internal/database"
	"canteen-backend/internal/logger"
	"canteen-backend/internal/menu"
	"canteen-backend/internal/models"
	"canteen-backend/internal/notify"
	"canteen-backend/internal/ordering"
	"canteen-backend/internal/report"
	"canteen-backend/internal/review"
	"canteen-backend/internal/supply"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogPretty)
	db := database.Init(cfg)

	app := setupApp(cfg, db)

	log.Info().Str("port", cfg.HTTPPort).Msg("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupApp(cfg *config.Config, db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: apperr.Handler,
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(recover.New())
	app.Use(logger.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	menuSvc := menu.NewService(db)
	orderSvc := ordering.NewService(db)
	supplySvc := supply.NewService(db)
	notifySvc := notify.NewService(db)
	accountSvc := account.NewService(db)
	reviewSvc := review.NewService(db)
	reportSvc := report.NewService(db)
	dashSvc := &dashboard.Service{
		DB:       db,
		Now:      time.Now,
		Menu:     menuSvc,
		Ordering: orderSvc,
		Supply:   supplySvc,
		Report:   reportSvc,
		Reviews:  reviewSvc,
	}

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(db, cfg.AllowStaffSignup))
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        cfg.LoginRateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many login attempts, try again later")
		},
	}), auth.LoginHandler(db, cfg.JWTSecret))

	// Protected, any role
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler(db))
	protected.Post("/auth/password", auth.ChangePasswordHandler(db))
	protected.Get("/notifications", notify.ListHandler(notifySvc))
	protected.Post("/notifications/read", notify.MarkReadHandler(notifySvc))
	protected.Get("/dashboard", dashboard.Handler(dashSvc))
	protected.Get("/menu", menu.ListMenuHandler(menuSvc))

	// Student
	student := auth.RequireRole(models.RoleStudent)
	protected.Post("/orders", student, ordering.PlaceOrderHandler(orderSvc))
	protected.Post("/subscription", student, ordering.PurchaseSubscriptionHandler(orderSvc))
	protected.Post("/account/top-up", student, account.TopUpHandler(accountSvc))
	protected.Put("/account/allergies", student, account.UpdateAllergiesHandler(accountSvc))
	protected.Post("/items/:id/reviews", student, review.CreateHandler(reviewSvc))

	// Cook
	cookRoutes := protected.Group("/cook")
	cookRoutes.Use(auth.RequireRole(models.RoleCook))

	cookRoutes.Get("/orders", ordering.ListPendingHandler(orderSvc))
	cookRoutes.Post("/orders/complete-all", ordering.CompleteAllHandler(orderSvc))
	cookRoutes.Post("/orders/:id/complete", ordering.CompleteOrderHandler(orderSvc))
	cookRoutes.Get("/warehouse", menu.ListWarehouseHandler(menuSvc))
	cookRoutes.Post("/dishes", menu.CreateDishHandler(menuSvc))
	cookRoutes.Post("/dishes/:id/publish", menu.PublishDishHandler(menuSvc))
	cookRoutes.Put("/items/:id/stock", menu.UpdateStockHandler(menuSvc))
	cookRoutes.Get("/supply-requests", supply.ListRequestsHandler(supplySvc))
	cookRoutes.Post("/supply-requests", supply.CreateRequestHandler(supplySvc))
	cookRoutes.Post("/supply-requests/auto", supply.AutoRequestHandler(supplySvc))

	// Admin
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Get("/supply-requests", supply.ListRequestsHandler(supplySvc))
	adminRoutes.Post("/supply-requests/:id/approve", supply.DecideHandler(supplySvc, supply.Approve))
	adminRoutes.Post("/supply-requests/:id/reject", supply.DecideHandler(supplySvc, supply.Reject))
	adminRoutes.Get("/reviews", review.ListHandler(reviewSvc))
	adminRoutes.Get("/report", report.ReportHandler(reportSvc))
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	return app
}
