// Package http expone la superficie HTTP del sistema: el webhook de la
// tienda y las consultas de balance. El bot conversacional no pasa por acá.
package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Webhook    *WebhookHandler
	Balance    *BalanceHandler
	Products   *ProductsHandler
	Reconciler *ReconcilerHandler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	api.Post("/webhooks/tiendanube", deps.Webhook.Handle)

	balances := api.Group("/balance")
	balances.Get("/", deps.Balance.Get)
	balances.Get("/pdf", deps.Balance.GetPDF)
	balances.Get("/months", deps.Balance.Months)

	productos := api.Group("/products")
	productos.Post("/sync", deps.Products.Sync)
	productos.Get("/stock", deps.Products.Stock)

	api.Post("/reconciliation/sweep", deps.Reconciler.Sweep)
}
