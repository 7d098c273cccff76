package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	applog "smartpharma/internal/log"
	"smartpharma/internal/validate"
)

type ProductHandler struct{ *Env }

// rawBody decodes a JSON object without committing to field types.
func rawBody(c *fiber.Ctx) (map[string]any, bool) {
	var raw map[string]any
	if err := json.Unmarshal(c.Body(), &raw); err != nil || raw == nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return nil, false
	}
	return raw, true
}

func (h *ProductHandler) Add(c *fiber.Ctx) error {
	raw, valid := rawBody(c)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "request body must be a JSON object")
	}
	p, err := h.scope(c).Inventory.AddProduct(c.UserContext(), raw)
	if err != nil {
		return respondError(c, "product.add.error", err)
	}
	applog.Audit(c, "product.add", map[string]any{"product_id": p.ID, "barcode": p.Barcode})
	return ok(c, fiber.Map{"message": "Product added successfully", "product_id": p.ID, "product": p})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	p, err := h.scope(c).Inventory.Product(c.UserContext(), id)
	if err != nil {
		return respondError(c, "product.get.error", err)
	}
	return ok(c, fiber.Map{"product": p})
}

func (h *ProductHandler) ByBarcode(c *fiber.Ctx) error {
	p, err := h.scope(c).Inventory.ProductByBarcode(c.UserContext(), c.Params("barcode"))
	if err != nil {
		return respondError(c, "product.barcode.error", err)
	}
	return ok(c, fiber.Map{"product": p})
}
