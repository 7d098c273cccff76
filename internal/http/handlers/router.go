package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register mounts every route. Middleware shared with main (request id,
// access log, helmet, limiter) is installed by the caller.
func Register(app *fiber.App, d *Deps) {
	env := d.Env
	withConn := WithConn(env.Pool)
	staff := RequireStaff(env.Cfg.StaffKeyHash)

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		status := c.Response().StatusCode()
		if err != nil {
			// ErrorHandler has not written the response yet.
			status = errorStatus(err)
		}
		env.Metrics.ObserveRequest(route, status, time.Since(start))
		return err
	})

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	if env.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(env.Gatherer, promhttp.HandlerOpts{})))
	}

	// Pages
	app.Get("/", withConn, d.PageHandler.Dashboard)
	app.Get("/alerts", withConn, d.PageHandler.Alerts)
	app.Get("/insights", withConn, d.PageHandler.Insights)
	app.Get("/sales_counter", withConn, d.PageHandler.SalesCounter)

	api := app.Group("/api", withConn)
	api.Get("/dashboard", d.DashboardHandler.Dashboard)
	api.Get("/insights", d.DashboardHandler.Insights)
	api.Get("/reorder-suggestions", d.DashboardHandler.Reorder)

	api.Get("/alerts", d.AlertHandler.List)
	api.Post("/alerts/filter", d.AlertHandler.Filter)
	api.Post("/alerts/dismiss/:id", d.AlertHandler.Dismiss)
	api.Get("/alerts/:id", d.AlertHandler.Detail)

	api.Post("/chat", d.ChatHandler.Chat)

	api.Post("/add-product", staff, d.ProductHandler.Add)
	api.Get("/products/search", d.ProductHandler.Search)
	api.Get("/product/barcode/:barcode", d.ProductHandler.ByBarcode)
	api.Get("/product/:id", d.ProductHandler.Get)
	api.Get("/product/:id/history", d.ProductHandler.History)
	api.Post("/product/:id/restock", staff, d.ProductHandler.Restock)

	api.Post("/record-sale", staff, d.SalesHandler.Record)
	api.Get("/sales-stats", d.SalesHandler.Stats)
	api.Get("/sales-report/download", d.SalesHandler.Report)

	api.Get("/inventory/export.xlsx", d.ExportHandler.InventoryXLSX)
	api.Get("/inventory/export.csv", d.ExportHandler.InventoryCSV)

	app.Use(NotFound)
}
