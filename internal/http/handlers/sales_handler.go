package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"smartpharma/internal/export"
	applog "smartpharma/internal/log"
	"smartpharma/internal/services"
)

type SalesHandler struct{ *Env }

func (h *SalesHandler) Record(c *fiber.Ctx) error {
	raw, valid := rawBody(c)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "request body must be a JSON object")
	}
	req, err := services.ParseSaleRequest(raw)
	if err != nil {
		return respondError(c, "sale.validate", err)
	}
	receipt, err := h.scope(c).Inventory.RecordSale(c.UserContext(), req)
	if err != nil {
		return respondError(c, "sale.record.error", err)
	}
	h.Metrics.SaleRecorded()
	applog.Audit(c, "sale.record", map[string]any{
		"product_id": receipt.ProductID, "quantity": receipt.Quantity, "reference": receipt.Reference,
	})
	return ok(c, fiber.Map{"message": "Sale recorded", "sale": receipt})
}

func (h *SalesHandler) Stats(c *fiber.Ctx) error {
	st, err := h.scope(c).Inventory.SalesStats(c.UserContext())
	if err != nil {
		return respondError(c, "sales.stats.error", err)
	}
	return ok(c, fiber.Map{"stats": st})
}

func (h *SalesHandler) Report(c *fiber.Ctx) error {
	rep, err := h.scope(c).Inventory.TodaySales(c.UserContext())
	if err != nil {
		return respondError(c, "sales.report.error", err)
	}
	var buf bytes.Buffer
	if err := export.SalesXLSX(&buf, rep.GeneratedAt, rep.Lines, rep.Stats); err != nil {
		return respondError(c, "sales.report.render", err)
	}
	applog.Audit(c, "sales.report.download", map[string]any{"rows": len(rep.Lines)})
	c.Attachment(export.SalesReportFilename(rep.GeneratedAt))
	c.Set(fiber.HeaderContentType, export.XLSXContentType)
	return c.Send(buf.Bytes())
}
