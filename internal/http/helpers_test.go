package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"smartpharma/internal/config"
	"smartpharma/internal/http/handlers"
	applog "smartpharma/internal/log"
	"smartpharma/internal/metrics"
	"smartpharma/internal/repos"
	"smartpharma/internal/services"
)

var now = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

type testApp struct {
	*fiber.App
	pool *repos.Pool
}

func newApp(t *testing.T, mutate ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := config.Default()
	cfg.DBDSN = ":memory:"
	for _, m := range mutate {
		m(&cfg)
	}
	nowFn := func() time.Time { return now }
	db, err := repos.OpenDB(cfg.DBDSN, repos.Options{SeedSample: cfg.SeedSampleData, Now: nowFn})
	require.NoError(t, err)
	pool := repos.NewPool(db)
	t.Cleanup(func() { _ = pool.Close() })

	reg := prometheus.NewRegistry()
	deps := handlers.NewDeps(&handlers.Env{
		Cfg:       cfg,
		Pool:      pool,
		Predictor: services.NewPredictor(),
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
		Now:       nowFn,
	})

	app := fiber.New(fiber.Config{
		Views:        html.New("../../web/templates", ".html"),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(requestid.New())
	handlers.Register(app, deps)
	return &testApp{App: app, pool: pool}
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (a *testApp) json(t *testing.T, method, path string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	resp, raw := a.do(t, method, path, body, headers...)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), "body=%s", raw)
	return resp.StatusCode, m
}

type logEntry struct {
	Level    string         `json:"level"`
	Action   string         `json:"action"`
	Audit    bool           `json:"audit"`
	Security bool           `json:"security"`
	ReqID    string         `json:"req_id"`
	Err      string         `json:"err"`
	Fields   map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	restore := applog.SetOutput(buf)
	defer restore()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if json.Unmarshal([]byte(line), &e) == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) *logEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}

func readAll(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return b
}
