package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestRequestFieldsAndAudit(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		c.Locals("requestid", "rid-1")
		Audit(c, "thing.done", map[string]any{"n": 1})
		Error(c, "thing.failed", errors.New("boom"), nil)
		return c.SendStatus(fiber.StatusNoContent)
	})
	_, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var audit map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &audit))
	assert.Equal(t, "thing.done", audit["action"])
	assert.Equal(t, true, audit["audit"])
	assert.Equal(t, "rid-1", audit["req_id"])
	assert.Equal(t, "/x", audit["path"])
	assert.Equal(t, "info", audit["level"])

	var failed map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failed))
	assert.Equal(t, "boom", failed["err"])
	assert.Equal(t, "error", failed["level"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Level: "warn", Output: &buf})
	defer Setup(Options{})

	Info(nil, "quiet", nil)
	Warn(nil, "loud", nil)
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}
