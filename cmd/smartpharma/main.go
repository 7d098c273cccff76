package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"smartpharma/internal/config"
	"smartpharma/internal/http/handlers"
	applog "smartpharma/internal/log"
	"smartpharma/internal/metrics"
	"smartpharma/internal/repos"
	"smartpharma/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		applog.L().Fatal().Err(err).Msg("load config")
	}

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			applog.L().Warn().Err(err).Str("file", cfg.LogFile).Msg("could not open log file")
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Setup(applog.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: out, Service: "smartpharma"})
	lg := applog.L()

	db, err := repos.OpenDB(cfg.DBDSN, repos.Options{MaxOpenConns: cfg.DBMaxOpenConns, SeedSample: cfg.SeedSampleData})
	if err != nil {
		lg.Fatal().Err(err).Str("dsn", cfg.DBDSN).Msg("open database")
	}
	pool := repos.NewPool(db)
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := handlers.NewDeps(&handlers.Env{
		Cfg:       cfg,
		Pool:      pool,
		Predictor: services.NewPredictor(),
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
	})

	// Templates & app
	engine := html.New(cfg.TemplatesDir, ".html")
	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: out}))
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitPerMinute,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/healthz" || p == "/metrics" || strings.HasPrefix(p, "/static/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.limit.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"status": "error", "message": "rate limit exceeded, retry soon"})
		},
	}))
	app.Static("/static", "./web/static")

	handlers.Register(app, deps)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			applog.L().Error().Err(err).Msg("shutdown")
		}
	}()

	applog.L().Info().Str("port", cfg.Port).Msg("smartpharma listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.L().Fatal().Err(err).Msg("listen")
	}
}
