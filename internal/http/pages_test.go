package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartpharma/internal/domain"
	"smartpharma/internal/http/handlers"
)

func TestPagesRender(t *testing.T) {
	app := newApp(t)
	for path, want := range map[string]string{
		"/":              "Expiring soon",
		"/alerts":        "Amoxicillin 250mg",
		"/insights":      "Demand forecast",
		"/sales_counter": "Record sale",
	} {
		resp, raw := app.do(t, "GET", path, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, string(raw), want, path)
	}

	resp, raw := app.do(t, "GET", "/no-such-page", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), "Page not found")
}

func errorApp() *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        html.New("../../web/templates", ".html"),
		ErrorHandler: handlers.ErrorHandler,
	})
	boom := func(c *fiber.Ctx) error { return errors.New("db timeout: secret trace") }
	app.Get("/api/boom", boom)
	app.Get("/boom", boom)
	app.Get("/api/missing", func(c *fiber.Ctx) error {
		return domain.NewError(domain.CodeNotFound, "product not found")
	})
	return app
}

func TestErrorHandlerMasksInternals(t *testing.T) {
	app := errorApp()
	var body []byte
	entries := captureLogs(t, func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/boom", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body = readAll(t, resp)
	})
	assert.Contains(t, string(body), `"status":"error"`)
	assert.NotContains(t, string(body), "secret")

	logged := findAction(entries, "server.error")
	require.NotNil(t, logged)
	assert.Contains(t, logged.Err, "secret trace")

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	page := string(readAll(t, resp))
	assert.Contains(t, page, "Something went wrong")
	assert.NotContains(t, page, "secret")

	resp, err = app.Test(httptest.NewRequest("GET", "/api/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(readAll(t, resp)), "product not found")
}

func TestDatabaseUnavailableIs500(t *testing.T) {
	app := newApp(t)
	require.NoError(t, app.pool.DB().Close())

	var status int
	var body map[string]any
	entries := captureLogs(t, func() {
		status, body = app.json(t, "GET", "/api/alerts", nil)
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "error", body["status"])
	assert.NotNil(t, findAction(entries, "db.acquire"))

	resp, raw := app.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Regexp(t, `smartpharma_http_request_duration_seconds_count\{route="[^"]*",status="500"\} 1`, string(raw))
}

func TestAuditAndSkipLogging(t *testing.T) {
	app := newApp(t)
	_, err := app.pool.DB().Exec(`INSERT INTO products(name, category, barcode, expiry_date, stock_quantity, price)
		VALUES ('Mystery', 'Other', 'MYS001', '2025-02-31', 3, 1)`)
	require.NoError(t, err)

	entries := captureLogs(t, func() {
		app.json(t, "GET", "/api/alerts", nil)
		app.json(t, "POST", "/api/alerts/dismiss/2", nil)
	})

	skip := findAction(entries, "batch.skip")
	require.NotNil(t, skip)
	assert.Equal(t, "warn", skip.Level)
	assert.Equal(t, "Mystery", skip.Fields["name"])

	entries = captureLogs(t, func() {
		app.json(t, "POST", "/api/chat", map[string]string{"message": "what is expiring"})
	})
	skip = findAction(entries, "batch.skip")
	require.NotNil(t, skip)
	assert.Equal(t, "chat.expiring", skip.Fields["stage"])
	assert.Equal(t, "Mystery", skip.Fields["name"])

	entries = captureLogs(t, func() {
		app.json(t, "POST", "/api/alerts/dismiss/2", nil)
	})
	dismiss := findAction(entries, "alert.dismiss")
	require.NotNil(t, dismiss)
	assert.True(t, dismiss.Audit)
	assert.NotEmpty(t, dismiss.ReqID)
}
