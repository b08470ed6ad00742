package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/coinbox/coinbox-mod-sales/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Sales   *handlers.SalesHandler
	Catalog *handlers.CatalogHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	catalog := app.Group("/catalog")
	catalog.Get("/products", cfg.Catalog.ListProducts)
	catalog.Get("/products/:id", cfg.Catalog.GetProduct)
	catalog.Get("/currencies", cfg.Catalog.ListCurrencies)
	catalog.Get("/customers", cfg.Catalog.ListCustomers)

	sales := app.Group("/sales")
	sales.Get("/tickets", cfg.Sales.ListTickets)
	sales.Post("/tickets", cfg.Sales.NewTicket)
	sales.Post("/tickets/select", cfg.Sales.SelectTicket)

	current := sales.Group("/tickets/current")
	current.Get("", cfg.Sales.CurrentTicket)
	current.Delete("", cfg.Sales.CancelTicket)
	current.Post("/close", cfg.Sales.CloseTicket)
	current.Post("/reopen", cfg.Sales.ReopenTicket)
	current.Post("/lines", cfg.Sales.AddLine)
	current.Patch("/lines/:id", cfg.Sales.EditLine)
	current.Delete("/lines/:id", cfg.Sales.RemoveLine)
	current.Put("/lines/:id/amount", cfg.Sales.SetLineAmount)
	current.Post("/products", cfg.Sales.AddProduct)
	current.Put("/discount", cfg.Sales.SetDiscount)
	current.Put("/comment", cfg.Sales.SetComment)
	current.Put("/customer", cfg.Sales.SetCustomer)

	sales.Get("/currency", cfg.Sales.GetCurrency)
	sales.Put("/currency", cfg.Sales.SetCurrency)
	sales.Get("/totals", cfg.Sales.Totals)
	sales.Get("/payment-methods", cfg.Sales.PaymentMethods)
}
