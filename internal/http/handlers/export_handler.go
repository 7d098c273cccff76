package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"smartpharma/internal/export"
	applog "smartpharma/internal/log"
)

type ExportHandler struct{ *Env }

func (h *ExportHandler) InventoryXLSX(c *fiber.Ctx) error {
	products, err := h.scope(c).Products.All(c.UserContext())
	if err != nil {
		return respondError(c, "export.inventory.error", err)
	}
	now := h.now()
	var buf bytes.Buffer
	if err := export.InventoryXLSX(&buf, now, products); err != nil {
		return respondError(c, "export.inventory.render", err)
	}
	applog.Audit(c, "export.inventory", map[string]any{"format": "xlsx", "rows": len(products)})
	c.Attachment(export.InventoryXLSXFilename(now))
	c.Set(fiber.HeaderContentType, export.XLSXContentType)
	return c.Send(buf.Bytes())
}

func (h *ExportHandler) InventoryCSV(c *fiber.Ctx) error {
	products, err := h.scope(c).Products.All(c.UserContext())
	if err != nil {
		return respondError(c, "export.inventory.error", err)
	}
	var buf bytes.Buffer
	if err := export.InventoryCSV(&buf, products); err != nil {
		return respondError(c, "export.inventory.render", err)
	}
	applog.Audit(c, "export.inventory", map[string]any{"format": "csv", "rows": len(products)})
	c.Attachment(export.InventoryCSVFilename(h.now()))
	c.Set(fiber.HeaderContentType, export.CSVContentType)
	return c.Send(buf.Bytes())
}
