package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct{ *Env }

func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.scope(c).Dashboard.Dashboard(c.UserContext())
	if err != nil {
		return respondError(c, "dashboard.error", err)
	}
	h.reportSkipped(c, "dashboard", d.Skipped)
	return ok(c, fiber.Map{
		"metrics":       d.Metrics,
		"expiring_soon": d.ExpiringSoon,
		"high_demand":   d.HighDemand,
		"products":      d.Products,
	})
}

func (h *DashboardHandler) Insights(c *fiber.Ctx) error {
	in, err := h.scope(c).Dashboard.Insights(c.UserContext())
	if err != nil {
		return respondError(c, "insights.error", err)
	}
	h.reportSkipped(c, "insights", in.Skipped)
	return ok(c, fiber.Map{
		"expiry_insights":    in.ExpiryInsights,
		"demand_insights":    in.DemandInsights,
		"waste_prevented_kg": in.WastePreventedKg,
		"avg_eco_score":      in.AvgEcoScore,
		"packaging_analysis": in.PackagingAnalysis,
	})
}

func (h *DashboardHandler) Reorder(c *fiber.Ctx) error {
	list, err := h.scope(c).Dashboard.Reorder(c.UserContext())
	if err != nil {
		return respondError(c, "reorder.error", err)
	}
	return ok(c, fiber.Map{"suggestions": list, "count": len(list)})
}
