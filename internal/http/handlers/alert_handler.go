package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "smartpharma/internal/log"
	"smartpharma/internal/services"
)

type AlertHandler struct{ *Env }

func (h *AlertHandler) respondList(c *fiber.Ctx, list services.AlertList) error {
	h.reportSkipped(c, "alerts", list.Skipped)
	for _, a := range list.Alerts {
		h.Metrics.AlertGenerated(string(a.Type), string(a.Severity))
	}
	return ok(c, fiber.Map{
		"alerts":         list.Alerts,
		"count":          list.Count,
		"critical_count": list.CriticalCount,
		"warning_count":  list.WarningCount,
	})
}

func (h *AlertHandler) List(c *fiber.Ctx) error {
	list, err := h.scope(c).Alerts.List(c.UserContext())
	if err != nil {
		return respondError(c, "alerts.list.error", err)
	}
	return h.respondList(c, list)
}

func (h *AlertHandler) Filter(c *fiber.Ctx) error {
	var f services.AlertFilter
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&f); err != nil {
			applog.Security(c, "validation.fail", map[string]any{"field": "body"})
			return fail(c, fiber.StatusBadRequest, "invalid JSON body")
		}
	}
	list, err := h.scope(c).Alerts.Filter(c.UserContext(), f)
	if err != nil {
		return respondError(c, "alerts.filter.error", err)
	}
	return h.respondList(c, list)
}

func (h *AlertHandler) Detail(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fail(c, fiber.StatusBadRequest, "invalid alert id")
	}
	d, err := h.scope(c).Alerts.Detail(c.UserContext(), id)
	if err != nil {
		return respondError(c, "alerts.detail.error", err)
	}
	return ok(c, fiber.Map{"alert": d})
}

func (h *AlertHandler) Dismiss(c *fiber.Ctx) error {
	id, _ := c.ParamsInt("id")
	_ = h.scope(c).Alerts.Dismiss(c.UserContext(), id)
	applog.Audit(c, "alert.dismiss", map[string]any{"alert_id": c.Params("id")})
	return ok(c, fiber.Map{"message": "Alert dismissed", "alert_id": id})
}
