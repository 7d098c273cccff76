package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "smartpharma/internal/log"
)

// PageHandler serves the server-rendered HTML views.
type PageHandler struct{ *Env }

const pageError = "Could not load inventory data. Please retry."

func (h *PageHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.scope(c).Dashboard.Dashboard(c.UserContext())
	if err != nil {
		applog.Error(c, "page.dashboard.error", err, nil)
		return renderError(c, fiber.StatusInternalServerError, pageError)
	}
	h.reportSkipped(c, "dashboard", d.Skipped)
	return render(c, "dashboard", fiber.Map{"Title": "Dashboard", "D": d})
}

func (h *PageHandler) Alerts(c *fiber.Ctx) error {
	list, err := h.scope(c).Alerts.List(c.UserContext())
	if err != nil {
		applog.Error(c, "page.alerts.error", err, nil)
		return renderError(c, fiber.StatusInternalServerError, pageError)
	}
	h.reportSkipped(c, "alerts", list.Skipped)
	return render(c, "alerts", fiber.Map{"Title": "Alerts", "L": list})
}

func (h *PageHandler) Insights(c *fiber.Ctx) error {
	in, err := h.scope(c).Dashboard.Insights(c.UserContext())
	if err != nil {
		applog.Error(c, "page.insights.error", err, nil)
		return renderError(c, fiber.StatusInternalServerError, pageError)
	}
	h.reportSkipped(c, "insights", in.Skipped)
	return render(c, "insights", fiber.Map{"Title": "AI Insights", "I": in})
}

func (h *PageHandler) SalesCounter(c *fiber.Ctx) error {
	st, err := h.scope(c).Inventory.SalesStats(c.UserContext())
	if err != nil {
		applog.Error(c, "page.sales.error", err, nil)
		return renderError(c, fiber.StatusInternalServerError, pageError)
	}
	return render(c, "sales_counter", fiber.Map{"Title": "Sales Counter", "Stats": st})
}

func NotFound(c *fiber.Ctx) error {
	if isAPI(c) {
		return fail(c, fiber.StatusNotFound, "Endpoint not found")
	}
	return renderError(c, fiber.StatusNotFound, "Page not found")
}
