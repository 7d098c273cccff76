package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	applog "smartpharma/internal/log"
)

const StaffKeyHeader = "X-Staff-Key"

// RequireStaff guards mutating endpoints with a shared staff key checked against
// a bcrypt hash. An empty hash leaves the endpoint open.
func RequireStaff(hash string) fiber.Handler {
	hash = strings.TrimSpace(hash)
	return func(c *fiber.Ctx) error {
		if hash == "" {
			return c.Next()
		}
		key := c.Get(StaffKeyHeader)
		if key == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) != nil {
			applog.Security(c, "access.denied.staff", map[string]any{"key_present": key != ""})
			return fail(c, fiber.StatusUnauthorized, "staff key required")
		}
		return c.Next()
	}
}
