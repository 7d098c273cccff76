package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"smartpharma/internal/domain"
	applog "smartpharma/internal/log"
	"smartpharma/internal/services"
)

const internalMessage = "Internal server error"

func ok(c *fiber.Ctx, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["status"] = "success"
	return c.JSON(data)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": message})
}

// respondError maps a coded error to its status. 500s are logged and masked.
func respondError(c *fiber.Ctx, action string, err error) error {
	code := domain.CodeOf(err)
	status := domain.StatusFor(code)
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, action, err, map[string]any{"code": string(code)})
		return fail(c, status, internalMessage)
	}
	applog.Warn(c, action, map[string]any{"code": string(code), "err": err.Error()})
	msg := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message()
		if cause := de.Unwrap(); cause != nil && code == domain.CodeValidation {
			msg = cause.Error()
		}
	}
	return fail(c, status, msg)
}

func (e *Env) reportSkipped(c *fiber.Ctx, stage string, skipped []services.Skipped) {
	if len(skipped) == 0 {
		return
	}
	e.Metrics.Skipped(stage, len(skipped))
	for _, s := range skipped {
		applog.Warn(c, "batch.skip", map[string]any{
			"stage": stage, "product_id": s.ProductID, "name": s.Name, "reason": s.Reason,
		})
	}
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api")
}

// errorStatus is the status ErrorHandler will answer err with.
func errorStatus(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return domain.StatusFor(domain.CodeOf(err))
}

// ErrorHandler turns unhandled errors into the JSON envelope on /api and a
// friendly page elsewhere. Internal details never reach the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	message := "Something went wrong. Please try again."
	if status < fiber.StatusInternalServerError {
		message = err.Error()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			message = fe.Message
		}
	}
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}

	if isAPI(c) {
		if status >= fiber.StatusInternalServerError {
			message = internalMessage
		}
		return fail(c, status, message)
	}
	if rerr := c.Status(status).Render("notfound", fiber.Map{"Message": message}); rerr != nil {
		return c.Status(status).SendString(message)
	}
	return nil
}
