package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "smartpharma/internal/log"
	"smartpharma/internal/validate"
)

type restockRequest struct {
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

func (h *ProductHandler) Restock(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	var req restockRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "quantity must be a positive integer")
	}
	p, err := h.scope(c).Inventory.Restock(c.UserContext(), id, req.Quantity, req.Notes)
	if err != nil {
		return respondError(c, "product.restock.error", err)
	}
	applog.Audit(c, "product.restock", map[string]any{"product_id": id, "quantity": req.Quantity})
	return ok(c, fiber.Map{"message": "Stock updated", "product": p})
}

func (h *ProductHandler) History(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	txs, err := h.scope(c).Inventory.History(c.UserContext(), id)
	if err != nil {
		return respondError(c, "product.history.error", err)
	}
	return ok(c, fiber.Map{"transactions": txs, "count": len(txs)})
}
