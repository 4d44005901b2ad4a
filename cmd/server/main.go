package main

import (
	"log"
	"strings"

	"github.com/SebasIsd/SistemaTech/internal/admin"
	"github.com/SebasIsd/SistemaTech/internal/auth"
	"github.com/SebasIsd/SistemaTech/internal/billing"
	"github.com/SebasIsd/SistemaTech/internal/catalog"
	"github.com/SebasIsd/SistemaTech/internal/clients"
	"github.com/SebasIsd/SistemaTech/internal/config"
	"github.com/SebasIsd/SistemaTech/internal/dashboard"
	"github.com/SebasIsd/SistemaTech/internal/database"
	"github.com/SebasIsd/SistemaTech/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/register", auth.RegisterHandler(db))
	api.Post("/login", auth.LoginHandler(db, cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	// User administration (admin only)
	adminRoutes := protected.Group("")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Get("/users", admin.ListUsersHandler(db))
	adminRoutes.Put("/users/:id/active", admin.SetUserActiveHandler(db))
	adminRoutes.Put("/users/:id", admin.UpdateUserHandler(db))
	adminRoutes.Delete("/users/:id", admin.DeleteUserHandler(db))

	// Products
	protected.Get("/products", catalog.ListProductsHandler(db))
	protected.Post("/products", catalog.CreateProductHandler(db))
	protected.Get("/products/:id", catalog.GetProductHandler(db))
	protected.Put("/products/:id", catalog.UpdateProductHandler(db))
	protected.Delete("/products/:id", catalog.DeleteProductHandler(db))

	// Lots
	protected.Get("/products/:id/lots", catalog.ListLotsHandler(db))
	protected.Post("/products/:id/lots", catalog.CreateLotHandler(db))
	protected.Post("/products/:id/lots/import", catalog.ImportLotsHandler(db))
	protected.Put("/lots/:id", catalog.UpdateLotHandler(db))
	protected.Delete("/lots/:id", catalog.DeleteLotHandler(db))

	// Clients
	protected.Get("/clients", clients.ListClientsHandler(db))
	protected.Get("/clients/search", clients.SearchClientsHandler(db))
	protected.Post("/clients", clients.CreateClientHandler(db))
	protected.Put("/clients/:id", clients.UpdateClientHandler(db))
	protected.Delete("/clients/:id", clients.DeactivateClientHandler(db))

	// Invoices
	invoiceSvc := billing.NewService(db, cfg.TaxRate)
	protected.Post("/invoices", billing.CreateInvoiceHandler(db, invoiceSvc))
	protected.Get("/invoices", billing.ListInvoicesHandler(db))
	protected.Get("/invoices/:id", billing.GetInvoiceHandler(db))

	// Dashboard
	protected.Get("/dashboard/stats", dashboard.StatsHandler(db))
	protected.Get("/dashboard/weekly-sales", dashboard.WeeklySalesHandler(db))
	protected.Get("/dashboard/latest-invoices", dashboard.LatestInvoicesHandler(db))
	protected.Get("/dashboard/recent-activity", dashboard.RecentActivityHandler(db))

	log.Println("server listening on port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
