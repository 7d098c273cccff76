package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "smartpharma/internal/log"
	"smartpharma/internal/repos"
)

// WithConn checks out one connection for the request and always returns it.
func WithConn(pool *repos.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		conn, err := pool.Acquire(c.UserContext())
		if err != nil {
			applog.Error(c, "db.acquire", err, nil)
			return err
		}
		defer func() {
			if cerr := conn.Close(); cerr != nil {
				applog.Warn(c, "db.release", map[string]any{"err": cerr.Error()})
			}
		}()
		c.Locals(connKey, conn)
		return c.Next()
	}
}
