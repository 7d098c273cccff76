package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (h *ProductHandler) Search(c *fiber.Ctx) error {
	q := c.Query("q")
	if strings.TrimSpace(q) == "" {
		return ok(c, fiber.Map{"products": []any{}, "count": 0})
	}
	found, err := h.scope(c).Inventory.Search(c.UserContext(), q)
	if err != nil {
		return respondError(c, "product.search.error", err)
	}
	return ok(c, fiber.Map{"products": found, "count": len(found)})
}
