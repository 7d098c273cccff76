package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	applog "smartpharma/internal/log"
)

const maxChatMessage = 500

type ChatHandler struct{ *Env }

type chatRequest struct {
	Message string `json:"message"`
}

func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return fail(c, fiber.StatusBadRequest, "Empty message")
	}
	if n := utf8.RuneCountInString(msg); n > maxChatMessage {
		applog.Security(c, "validation.fail", map[string]any{"field": "message", "len": n})
		return fail(c, fiber.StatusBadRequest, "message too long")
	}

	reply := h.scope(c).Chatbot.Respond(c.UserContext(), msg)
	h.Metrics.ChatQuery(reply.Intent)
	h.reportSkipped(c, "chat."+reply.Intent, reply.Skipped)
	applog.Info(c, "chat.reply", map[string]any{"intent": reply.Intent})
	return ok(c, fiber.Map{
		"response":  reply.Text,
		"timestamp": h.now().Format("2006-01-02T15:04:05Z07:00"),
	})
}
